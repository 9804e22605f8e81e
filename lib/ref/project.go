// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// ProjectID is a validated project identifier. Projects are created
// by the backend, which assigns the identifier; client code never
// constructs one except by parsing a server-provided value.
//
// ProjectID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type ProjectID struct {
	id string
}

// ParseProjectID validates and wraps a raw project identifier.
// Returns an error if the value is empty or contains whitespace.
func ParseProjectID(raw string) (ProjectID, error) {
	if err := validateOpaque("project ID", raw); err != nil {
		return ProjectID{}, err
	}
	return ProjectID{id: raw}, nil
}

// MustParseProjectID is like ParseProjectID but panics on error. Use
// in tests and static initialization where the input is known-valid.
func MustParseProjectID(raw string) ProjectID {
	p, err := ParseProjectID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseProjectID(%q): %v", raw, err))
	}
	return p
}

// String returns the identifier in its canonical string form.
func (p ProjectID) String() string { return p.id }

// IsZero reports whether the ProjectID is the zero value (uninitialized).
func (p ProjectID) IsZero() bool { return p.id == "" }

// MarshalJSON serializes the identifier as a JSON string. The REST
// API accepts string identifiers in request bodies regardless of how
// the server stores them.
func (p ProjectID) MarshalJSON() ([]byte, error) {
	return marshalIDJSON(p.id)
}

// UnmarshalJSON accepts either a JSON string or a JSON number. A JSON
// null produces the zero value (unset identifier).
func (p *ProjectID) UnmarshalJSON(data []byte) error {
	raw, err := unmarshalIDJSON("project ID", data)
	if err != nil {
		return err
	}
	p.id = raw
	return nil
}
