// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/taskboard-dev/taskboard/lib/ref"
)

// State is the connection state of a Session.
type State int

const (
	// StateDisconnected is the state before Connect and after Close.
	StateDisconnected State = iota
	// StateConnecting is the state while the initial push handshake
	// is in flight.
	StateConnecting
	// StateConnected is the state once the push channel is
	// established. The channel's automatic redial keeps a session in
	// this state across transient connection losses.
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// PushChannel is the push-side surface a Session needs. Satisfied by
// *Channel.
type PushChannel interface {
	Commander
	On(target string, handler Handler)
	SetConnectHook(hook func(reconnected bool))
	Start(ctx context.Context) error
	Close()
}

// SessionConfig holds configuration for creating a Session.
type SessionConfig struct {
	// Client is the REST client for the board backend. Required.
	Client *Client
	// Channel is the push channel. Required; the session registers
	// its event handlers and connect hook on it and owns its
	// lifecycle from Connect to Close.
	Channel PushChannel
	// Username is the display name announced to other room members.
	// Required.
	Username string
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
	// OnChange, if set, is called after every mirror or state
	// change, outside the session lock. UIs hang their re-render
	// here. Must be safe to call from multiple goroutines.
	OnChange func()
}

// Session is one user's live connection to the shared board: the
// project mirror, the task mirror of the occupied room, and the
// intents a UI invokes. All methods are safe for concurrent use.
//
// Mirrors change only in push event handlers and full-fetch merges.
// Intents issue REST mutations and return without touching the
// mirrors; the resulting state lands when the backend broadcasts the
// mutation back. A caller that sees an intent return nil and the
// mirror unchanged is observing the gap between those two moments,
// not a bug.
type Session struct {
	client     *Client
	channel    PushChannel
	membership *Membership
	username   string
	logger     *slog.Logger
	onChange   func()

	mu       sync.Mutex
	state    State
	projects []Project
	tasks    []TaskItem

	closeOnce sync.Once
}

// NewSession creates a session. Call Connect to go live.
func NewSession(config SessionConfig) (*Session, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("board: Client is required")
	}
	if config.Channel == nil {
		return nil, fmt.Errorf("board: Channel is required")
	}
	if config.Username == "" {
		return nil, fmt.Errorf("board: Username is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		client:     config.Client,
		channel:    config.Channel,
		membership: NewMembership(config.Channel, config.Username, logger),
		username:   config.Username,
		logger:     logger,
		onChange:   config.OnChange,
	}, nil
}

// Connect registers the push handlers, establishes the push channel,
// and performs the initial project fetch. On return the session is
// live: push events flow into the mirrors and the channel redials on
// its own. Connect fails only if the initial handshake or the initial
// project fetch fails. After a handshake failure the session is back
// in the disconnected state and Connect may be retried; after a fetch
// failure the push channel has been closed, so the session must be
// discarded and rebuilt on a fresh channel.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return fmt.Errorf("board: session is already %s", s.state)
	}
	s.state = StateConnecting
	s.mu.Unlock()
	s.notify()

	s.registerHandlers()
	s.channel.SetConnectHook(func(reconnected bool) {
		s.handleConnect(ctx, reconnected)
	})

	if err := s.channel.Start(ctx); err != nil {
		s.setState(StateDisconnected)
		return err
	}

	if err := s.refreshProjects(ctx); err != nil {
		s.channel.Close()
		s.setState(StateDisconnected)
		return err
	}
	return nil
}

// handleConnect runs on every successful push handshake. The initial
// connection only flips the state; Connect does the first fetch
// itself so its error surfaces to the caller. A reconnect
// re-establishes the server-side room membership on the new
// connection, then refreshes both mirrors to cover the events missed
// while the channel was down.
func (s *Session) handleConnect(ctx context.Context, reconnected bool) {
	s.setState(StateConnected)
	if !reconnected {
		return
	}

	if err := s.membership.Rejoin(); err != nil {
		s.logger.Warn("rejoining room after reconnect failed", "error", err)
	}

	// The fetches run off the channel's read goroutine so event
	// dispatch resumes immediately; the merge reducers reconcile any
	// events that arrive while the fetches are in flight.
	go func() {
		if err := s.refreshProjects(ctx); err != nil {
			s.logger.Warn("refreshing projects after reconnect failed", "error", err)
		}
		room := s.membership.Current()
		if room.ID.IsZero() {
			return
		}
		if err := s.refreshTasks(ctx, room.ID); err != nil {
			s.logger.Warn("refreshing tasks after reconnect failed", "error", err)
		}
	}()
}

func (s *Session) registerHandlers() {
	s.channel.On(EventCreateProject, s.onCreateProject)
	s.channel.On(EventDeleteProject, s.onDeleteProject)
	s.channel.On(EventEditProject, s.onEditProject)
	s.channel.On(EventReceiveTodo, s.onReceiveTodo)
	s.channel.On(EventDeleteTodo, s.onDeleteTodo)
	s.channel.On(EventEditTodo, s.onEditTodo)
}

// decodeArgument decodes the single positional payload of a push
// event. Events with no arguments or a malformed payload are dropped
// with a warning; there is nothing a client can do to repair a frame.
func decodeArgument[T any](logger *slog.Logger, event string, arguments []json.RawMessage) (T, bool) {
	var value T
	if len(arguments) == 0 {
		logger.Warn("push event missing payload", "event", event)
		return value, false
	}
	if err := json.Unmarshal(arguments[0], &value); err != nil {
		logger.Warn("push event with malformed payload", "event", event, "error", err)
		return value, false
	}
	return value, true
}

func (s *Session) onCreateProject(arguments []json.RawMessage) {
	project, ok := decodeArgument[Project](s.logger, EventCreateProject, arguments)
	if !ok {
		return
	}
	s.mu.Lock()
	s.projects = Created(s.projects, project)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) onDeleteProject(arguments []json.RawMessage) {
	id, ok := decodeArgument[ref.ProjectID](s.logger, EventDeleteProject, arguments)
	if !ok {
		return
	}

	// If the deleted project is the occupied room the server has
	// already dissolved the group, so drop the membership without a
	// leave command and clear the task mirror with it.
	left := s.membership.Forget(id)

	s.mu.Lock()
	s.projects = Deleted(s.projects, id.String())
	if left {
		s.tasks = nil
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Session) onEditProject(arguments []json.RawMessage) {
	project, ok := decodeArgument[Project](s.logger, EventEditProject, arguments)
	if !ok {
		return
	}
	s.mu.Lock()
	s.projects = Updated(s.projects, project)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) onReceiveTodo(arguments []json.RawMessage) {
	task, ok := decodeArgument[TaskItem](s.logger, EventReceiveTodo, arguments)
	if !ok {
		return
	}

	// A task event for another project is a straggler from a room
	// switch; the mirror holds only the occupied room's tasks. The
	// occupancy check shares the mirror lock with the append so a
	// concurrent switch cannot land between them.
	s.mu.Lock()
	if s.membership.Current().ID != task.ProjectID {
		s.mu.Unlock()
		return
	}
	s.tasks = Appended(s.tasks, task)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) onDeleteTodo(arguments []json.RawMessage) {
	id, ok := decodeArgument[ref.TaskID](s.logger, EventDeleteTodo, arguments)
	if !ok {
		return
	}
	s.mu.Lock()
	s.tasks = Deleted(s.tasks, id.String())
	s.mu.Unlock()
	s.notify()
}

func (s *Session) onEditTodo(arguments []json.RawMessage) {
	edited, ok := decodeArgument[TaskItem](s.logger, EventEditTodo, arguments)
	if !ok {
		return
	}

	// Only text and completion state are mutable. The mirror's copy
	// keeps its tag and attribution even if the event carries
	// different values.
	s.mu.Lock()
	for _, existing := range s.tasks {
		if existing.ID == edited.ID {
			existing.Text = edited.Text
			existing.Completed = edited.Completed
			s.tasks = Updated(s.tasks, existing)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// CreateProject creates a project with the given name, upper-cased
// the way the board displays project names. The mirror is not touched
// here; the new project arrives through the CreateProject push event.
func (s *Session) CreateProject(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("board: project name must not be empty")
	}
	return s.client.CreateProject(ctx, strings.ToUpper(name))
}

// RenameProject renames a project.
func (s *Session) RenameProject(ctx context.Context, id ref.ProjectID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("board: project name must not be empty")
	}
	return s.client.UpdateProject(ctx, id, name)
}

// DeleteProject deletes a project. If it is the occupied room, the
// DeleteProject push event clears the task mirror and the membership.
func (s *Session) DeleteProject(ctx context.Context, id ref.ProjectID) error {
	return s.client.DeleteProject(ctx, id)
}

// JoinRoom moves the session into a project's room and loads its
// tasks. Joining the current room again is a no-op. On a switch the
// task mirror resets immediately so the UI never shows the previous
// room's tasks, then fills from a full fetch merged with any push
// events that beat it.
func (s *Session) JoinRoom(ctx context.Context, project Project) error {
	switched, err := s.membership.Join(Room{ID: project.ID, Label: project.Name})
	if err != nil {
		return err
	}
	if !switched {
		return nil
	}

	s.mu.Lock()
	s.tasks = nil
	s.mu.Unlock()
	s.notify()

	return s.refreshTasks(ctx, project.ID)
}

// LeaveRoom moves the session out of its room and clears the task
// mirror. A no-op outside any room.
func (s *Session) LeaveRoom() error {
	if err := s.membership.Leave(); err != nil {
		return err
	}
	s.mu.Lock()
	s.tasks = nil
	s.mu.Unlock()
	s.notify()
	return nil
}

// CreateTask creates a task in the occupied room, attributed to the
// session's username and tagged by the sentiment classifier. A
// classifier failure downgrades to an untagged task rather than
// blocking the creation.
func (s *Session) CreateTask(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("board: task text must not be empty")
	}
	room := s.membership.Current()
	if room.ID.IsZero() {
		return ErrNoRoom
	}

	var tag string
	prediction, err := s.client.Predict(ctx, text)
	if err != nil {
		s.logger.Warn("classifier unavailable, creating untagged task", "error", err)
	} else {
		tag = TagFromScores(prediction.Scores)
	}

	return s.client.CreateTask(ctx, room.ID, s.username, text, tag)
}

// SetTaskCompleted marks a task complete or incomplete.
func (s *Session) SetTaskCompleted(ctx context.Context, id ref.TaskID, completed bool) error {
	task, err := s.taskByID(id)
	if err != nil {
		return err
	}
	task.Completed = completed
	return s.client.UpdateTask(ctx, task)
}

// EditTask replaces a task's text. The tag is carried over from the
// mirror; editing never re-runs the classifier.
func (s *Session) EditTask(ctx context.Context, id ref.TaskID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("board: task text must not be empty")
	}
	task, err := s.taskByID(id)
	if err != nil {
		return err
	}
	task.Text = text
	return s.client.UpdateTask(ctx, task)
}

// DeleteTask deletes a task from the occupied room.
func (s *Session) DeleteTask(ctx context.Context, id ref.TaskID) error {
	room := s.membership.Current()
	if room.ID.IsZero() {
		return ErrNoRoom
	}
	return s.client.DeleteTask(ctx, room.ID, id)
}

func (s *Session) taskByID(id ref.TaskID) (TaskItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return TaskItem{}, fmt.Errorf("board: no task %s in the current room", id)
}

// refreshProjects fetches the full project collection and reconciles
// it with the mirror. The fetch is authoritative for every project
// the mirror held when it was issued, so projects deleted server-side
// while the channel was down disappear; only entries that arrived
// over push during the fetch survive it.
func (s *Session) refreshProjects(ctx context.Context) error {
	s.mu.Lock()
	before := s.projects
	s.mu.Unlock()

	projects, err := s.client.Projects(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.projects = Refreshed(before, s.projects, projects)
	s.mu.Unlock()
	s.notify()
	return nil
}

// refreshTasks fetches the task collection of one room and reconciles
// it with the mirror the same way refreshProjects does, unless the
// session switched rooms while the fetch was in flight. The stale
// result is discarded; the switch already started its own fetch for
// the new room. The occupancy check shares the mirror lock with the
// merge so a switch cannot slip between them.
func (s *Session) refreshTasks(ctx context.Context, roomID ref.ProjectID) error {
	s.mu.Lock()
	before := s.tasks
	s.mu.Unlock()

	tasks, err := s.client.Tasks(ctx, roomID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.membership.Current().ID != roomID {
		s.mu.Unlock()
		s.logger.Debug("discarding task fetch for a room no longer occupied", "room", roomID)
		return nil
	}
	s.tasks = Refreshed(before, s.tasks, tasks)
	s.mu.Unlock()
	s.notify()
	return nil
}

// Projects returns a copy of the project mirror, newest first.
func (s *Session) Projects() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// Tasks returns a copy of the occupied room's task mirror in arrival
// order. Empty outside any room.
func (s *Session) Tasks() []TaskItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskItem, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// State returns the connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Username returns the display name the session was created with.
func (s *Session) Username() string { return s.username }

// CurrentRoom returns the occupied room; the zero Room when outside
// any room.
func (s *Session) CurrentRoom() Room { return s.membership.Current() }

// Close leaves the occupied room (best-effort) and shuts the push
// channel down. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if err := s.membership.Leave(); err != nil {
			s.logger.Debug("leaving room on close failed", "error", err)
		}
		s.channel.Close()
		s.setState(StateDisconnected)
	})
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	changed := s.state != state
	s.state = state
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
