// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"github.com/taskboard-dev/taskboard/lib/ref"
)

// Project is a shared list of task items. Identity is ID; Name is the
// only mutable field. Projects are mirrored locally for the lifetime
// of the session.
type Project struct {
	ID   ref.ProjectID `json:"id"`
	Name string        `json:"name"`
}

// EntityID returns the mirror identity of the project.
func (p Project) EntityID() string { return p.ID.String() }

// TaskItem is a single entry in a project's task list. Identity is
// ID, scoped within the owning project. Text and Completed are
// mutable by any room member; Tag is derived from the classifier at
// creation time and immutable afterwards. Task items are only loaded
// into memory while their project's room is joined.
type TaskItem struct {
	ID        ref.TaskID    `json:"id"`
	ProjectID ref.ProjectID `json:"projectId"`
	Username  string        `json:"username,omitempty"`
	Text      string        `json:"text"`
	Completed bool          `json:"completed"`
	Tag       string        `json:"tag,omitempty"`
}

// EntityID returns the mirror identity of the task item.
func (t TaskItem) EntityID() string { return t.ID.String() }

// Room identifies the project room a session occupies. The label is
// the project name at join time; the backend uses it only for
// presence messages, so a stale label after a rename is harmless.
type Room struct {
	ID    ref.ProjectID
	Label string
}

// Push event names delivered by the backend hub. Every mutation made
// by any room member (including the local session) arrives as one of
// these, carrying the affected entity or its identifier.
const (
	EventCreateProject = "CreateProject"
	EventDeleteProject = "DeleteProject"
	EventEditProject   = "EditProject"
	EventReceiveTodo   = "ReceiveTodo"
	EventDeleteTodo    = "DeleteTodo"
	EventEditTodo      = "EditTodo"
)

// Commands invoked on the backend hub over the push channel.
const (
	CommandJoinGroup  = "AddToGroup"
	CommandLeaveGroup = "RemoveFromGroup"
)

// createProjectRequest is the body of POST /api/projects. The server
// assigns the identifier.
type createProjectRequest struct {
	Name string `json:"name"`
}

// updateProjectRequest is the body of PUT /api/projects/{id}.
type updateProjectRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// createTaskRequest is the body of POST /api/projects/{projectId}/todos.
// The project identifier travels as a string regardless of how the
// server serializes it elsewhere.
type createTaskRequest struct {
	Username  string `json:"username"`
	ProjectID string `json:"projectId"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Tag       string `json:"tag"`
}

// updateTaskRequest is the body of PUT /api/todos/{projectId}/{id}.
// Tag is carried through unchanged; tasks are never reclassified.
type updateTaskRequest struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Username  string `json:"username"`
	ProjectID string `json:"projectId"`
	ID        string `json:"id"`
	Tag       string `json:"tag"`
}
