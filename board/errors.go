// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"errors"
	"fmt"
)

// APIError represents a non-2xx response from the board backend.
// Callers can use errors.As to extract the structured information:
//
//	var apiErr *board.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.StatusCode == http.StatusNotFound { ... }
//	}
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Message is the response body, which the backend uses for its
	// human-readable error description.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("board: server returned %d: %s", e.StatusCode, e.Message)
}

// IsAPIError checks whether err is an *APIError with the given HTTP
// status code.
func IsAPIError(err error, statusCode int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}
	return false
}

// ErrNotConnected is returned by push channel sends and session
// intents that require an established connection.
var ErrNotConnected = errors.New("board: push channel not established")

// ErrChannelClosed is returned by Channel.Start after Close has been
// called. Channels are single-use; create a new one to reconnect.
var ErrChannelClosed = errors.New("board: push channel closed")

// ErrNoRoom is returned by task intents issued while the session does
// not occupy a project room.
var ErrNoRoom = errors.New("board: no project room joined")
