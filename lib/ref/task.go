// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// TaskID is a validated task identifier, scoped within its owning
// project. Like ProjectID, task identifiers are server-assigned and
// opaque to the client.
//
// TaskID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type TaskID struct {
	id string
}

// ParseTaskID validates and wraps a raw task identifier.
// Returns an error if the value is empty or contains whitespace.
func ParseTaskID(raw string) (TaskID, error) {
	if err := validateOpaque("task ID", raw); err != nil {
		return TaskID{}, err
	}
	return TaskID{id: raw}, nil
}

// MustParseTaskID is like ParseTaskID but panics on error. Use in
// tests and static initialization where the input is known-valid.
func MustParseTaskID(raw string) TaskID {
	t, err := ParseTaskID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseTaskID(%q): %v", raw, err))
	}
	return t
}

// String returns the identifier in its canonical string form.
func (t TaskID) String() string { return t.id }

// IsZero reports whether the TaskID is the zero value (uninitialized).
func (t TaskID) IsZero() bool { return t.id == "" }

// MarshalJSON serializes the identifier as a JSON string.
func (t TaskID) MarshalJSON() ([]byte, error) {
	return marshalIDJSON(t.id)
}

// UnmarshalJSON accepts either a JSON string or a JSON number. A JSON
// null produces the zero value (unset identifier).
func (t *TaskID) UnmarshalJSON(data []byte) error {
	raw, err := unmarshalIDJSON("task ID", data)
	if err != nil {
		return err
	}
	t.id = raw
	return nil
}
