// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"log/slog"
	"sync"

	"github.com/taskboard-dev/taskboard/lib/ref"
)

// Commander sends hub commands over the push channel. Satisfied by
// *Channel; tests substitute a recorder.
type Commander interface {
	Send(target string, arguments ...any) error
}

// Membership tracks the single project room the session occupies and
// sequences the hub commands that maintain it. A session is in at
// most one room at a time: switching rooms always leaves the old one
// before joining the new one, so the backend never double-delivers
// task events.
type Membership struct {
	channel  Commander
	username string
	logger   *slog.Logger

	mu      sync.Mutex
	current Room
}

// NewMembership creates a membership tracker that starts outside any
// room.
func NewMembership(channel Commander, username string, logger *slog.Logger) *Membership {
	if logger == nil {
		logger = slog.Default()
	}
	return &Membership{
		channel:  channel,
		username: username,
		logger:   logger,
	}
}

// Join moves the session into the given project room. Joining the
// room already occupied is a no-op and reports switched=false; the
// caller can skip the mirror reset and refetch. Switching rooms
// leaves the current room first. The leave is best-effort: if it
// fails the join proceeds anyway, because a dropped connection has
// already removed the server-side membership.
func (m *Membership) Join(room Room) (switched bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.current.ID.IsZero() && m.current.ID == room.ID {
		return false, nil
	}

	if !m.current.ID.IsZero() {
		if err := m.channel.Send(CommandLeaveGroup, m.current.ID.String(), m.current.Label, m.username); err != nil {
			m.logger.Warn("leaving previous room failed",
				"room", m.current.ID,
				"error", err,
			)
		}
	}

	if err := m.channel.Send(CommandJoinGroup, room.ID.String(), room.Label, m.username); err != nil {
		// The join never reached the hub, so the session is in no
		// room at all now.
		m.current = Room{}
		return false, err
	}

	m.current = room
	m.logger.Info("joined project room", "room", room.ID, "label", room.Label)
	return true, nil
}

// Leave moves the session out of its current room. A no-op outside
// any room.
func (m *Membership) Leave() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID.IsZero() {
		return nil
	}

	room := m.current
	m.current = Room{}
	if err := m.channel.Send(CommandLeaveGroup, room.ID.String(), room.Label, m.username); err != nil {
		return err
	}
	m.logger.Info("left project room", "room", room.ID)
	return nil
}

// Forget clears the tracked room without sending a leave command.
// Used when the room's project was deleted: the server has already
// dissolved the group.
func (m *Membership) Forget(id ref.ProjectID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID != id {
		return false
	}
	m.current = Room{}
	return true
}

// Rejoin re-sends the join command for the current room. Called from
// the push channel's connect hook after a reconnect: the new
// connection has no server-side group membership, regardless of what
// the session believes.
func (m *Membership) Rejoin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID.IsZero() {
		return nil
	}
	if err := m.channel.Send(CommandJoinGroup, m.current.ID.String(), m.current.Label, m.username); err != nil {
		return err
	}
	m.logger.Info("rejoined project room after reconnect", "room", m.current.ID)
	return nil
}

// Current returns the occupied room; the zero Room when outside any
// room.
func (m *Membership) Current() Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
