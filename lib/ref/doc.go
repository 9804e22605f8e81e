// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated identifier types for Taskboard
// entities.
//
// The backend assigns every project and task an opaque identifier.
// Raw identifier values are parsed into these types at the API
// boundary (REST responses and push event payloads) and stay typed
// from there on, so a task ID can never be passed where a project ID
// is expected.
//
// The backend serializes identifiers as either JSON strings or JSON
// numbers depending on which surface produced them, so both types
// unmarshal from either form and always marshal back to strings,
// the form the REST API expects in request bodies and group commands.
//
// All types are immutable value types. The zero value is never valid;
// use IsZero to check.
package ref
