// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/taskboard-dev/taskboard/lib/ref"
)

// commandRecorder captures hub commands for assertions. Each command
// is flattened to "Target(arg1,arg2,...)".
type commandRecorder struct {
	mu       sync.Mutex
	commands []string
	err      error
}

func (r *commandRecorder) Send(target string, arguments ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	command := target + "("
	for i, argument := range arguments {
		if i > 0 {
			command += ","
		}
		command += fmt.Sprintf("%v", argument)
	}
	r.commands = append(r.commands, command+")")
	return nil
}

func (r *commandRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.commands))
	copy(out, r.commands)
	return out
}

func (r *commandRecorder) setError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func assertCommands(t *testing.T, recorder *commandRecorder, want ...string) {
	t.Helper()
	got := recorder.recorded()
	if len(got) != len(want) {
		t.Fatalf("commands = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("commands = %v, want %v", got, want)
		}
	}
}

func testRoom(id, label string) Room {
	return Room{ID: ref.MustParseProjectID(id), Label: label}
}

func TestJoinFirstRoom(t *testing.T) {
	recorder := &commandRecorder{}
	membership := NewMembership(recorder, "alice", nil)

	switched, err := membership.Join(testRoom("1", "GROCERIES"))
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if !switched {
		t.Error("first join must report switched")
	}
	assertCommands(t, recorder, "AddToGroup(1,GROCERIES,alice)")

	if membership.Current().ID.String() != "1" {
		t.Errorf("Current = %+v", membership.Current())
	}
}

func TestJoinSameRoomIsNoOp(t *testing.T) {
	recorder := &commandRecorder{}
	membership := NewMembership(recorder, "alice", nil)

	if _, err := membership.Join(testRoom("1", "GROCERIES")); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	switched, err := membership.Join(testRoom("1", "GROCERIES"))
	if err != nil {
		t.Fatalf("repeat Join failed: %v", err)
	}
	if switched {
		t.Error("joining the occupied room must not report switched")
	}
	assertCommands(t, recorder, "AddToGroup(1,GROCERIES,alice)")
}

func TestJoinSwitchLeavesFirst(t *testing.T) {
	recorder := &commandRecorder{}
	membership := NewMembership(recorder, "alice", nil)

	if _, err := membership.Join(testRoom("1", "GROCERIES")); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	switched, err := membership.Join(testRoom("2", "CHORES"))
	if err != nil {
		t.Fatalf("switch Join failed: %v", err)
	}
	if !switched {
		t.Error("switching rooms must report switched")
	}
	assertCommands(t, recorder,
		"AddToGroup(1,GROCERIES,alice)",
		"RemoveFromGroup(1,GROCERIES,alice)",
		"AddToGroup(2,CHORES,alice)",
	)
	if membership.Current().ID.String() != "2" {
		t.Errorf("Current = %+v", membership.Current())
	}
}

func TestJoinFailureClearsMembership(t *testing.T) {
	recorder := &commandRecorder{}
	membership := NewMembership(recorder, "alice", nil)

	recorder.setError(errors.New("connection down"))
	if _, err := membership.Join(testRoom("1", "GROCERIES")); err == nil {
		t.Fatal("expected Join error")
	}
	if !membership.Current().ID.IsZero() {
		t.Errorf("failed join must leave no membership, got %+v", membership.Current())
	}
}

func TestLeave(t *testing.T) {
	recorder := &commandRecorder{}
	membership := NewMembership(recorder, "alice", nil)

	if _, err := membership.Join(testRoom("1", "GROCERIES")); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if err := membership.Leave(); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	assertCommands(t, recorder,
		"AddToGroup(1,GROCERIES,alice)",
		"RemoveFromGroup(1,GROCERIES,alice)",
	)
	if !membership.Current().ID.IsZero() {
		t.Errorf("Current after Leave = %+v", membership.Current())
	}
}

func TestLeaveOutsideRoomIsNoOp(t *testing.T) {
	recorder := &commandRecorder{}
	membership := NewMembership(recorder, "alice", nil)

	if err := membership.Leave(); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	assertCommands(t, recorder)
}

func TestForget(t *testing.T) {
	recorder := &commandRecorder{}
	membership := NewMembership(recorder, "alice", nil)

	if _, err := membership.Join(testRoom("1", "GROCERIES")); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	if membership.Forget(ref.MustParseProjectID("2")) {
		t.Error("Forget of a different room must report false")
	}
	if !membership.Forget(ref.MustParseProjectID("1")) {
		t.Error("Forget of the occupied room must report true")
	}
	if !membership.Current().ID.IsZero() {
		t.Errorf("Current after Forget = %+v", membership.Current())
	}
	// No leave command: the server already dissolved the group.
	assertCommands(t, recorder, "AddToGroup(1,GROCERIES,alice)")
}

func TestRejoin(t *testing.T) {
	recorder := &commandRecorder{}
	membership := NewMembership(recorder, "alice", nil)

	if _, err := membership.Join(testRoom("1", "GROCERIES")); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if err := membership.Rejoin(); err != nil {
		t.Fatalf("Rejoin failed: %v", err)
	}
	assertCommands(t, recorder,
		"AddToGroup(1,GROCERIES,alice)",
		"AddToGroup(1,GROCERIES,alice)",
	)
}

func TestRejoinOutsideRoomIsNoOp(t *testing.T) {
	recorder := &commandRecorder{}
	membership := NewMembership(recorder, "alice", nil)

	if err := membership.Rejoin(); err != nil {
		t.Fatalf("Rejoin failed: %v", err)
	}
	assertCommands(t, recorder)
}
