// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"testing"

	"github.com/gorilla/websocket"
)

func TestDecodeResponse(t *testing.T) {
	var decoded struct {
		Name string `json:"name"`
	}
	err := DecodeResponse(strings.NewReader(`{"name":"GROCERIES"}`), &decoded)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if decoded.Name != "GROCERIES" {
		t.Errorf("Name = %q, want %q", decoded.Name, "GROCERIES")
	}
}

func TestDecodeResponseInvalidJSON(t *testing.T) {
	var decoded map[string]any
	if err := DecodeResponse(strings.NewReader("not json"), &decoded); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestErrorBody(t *testing.T) {
	if body := ErrorBody(strings.NewReader("boom")); body != "boom" {
		t.Errorf("ErrorBody = %q, want %q", body, "boom")
	}
}

func TestIsExpectedCloseError(t *testing.T) {
	expected := []error{
		io.EOF,
		net.ErrClosed,
		fmt.Errorf("read failed: %w", io.EOF),
		syscall.ECONNRESET,
		syscall.EPIPE,
		&websocket.CloseError{Code: websocket.CloseNormalClosure},
		&websocket.CloseError{Code: websocket.CloseGoingAway},
	}
	for _, err := range expected {
		if !IsExpectedCloseError(err) {
			t.Errorf("IsExpectedCloseError(%v) = false, want true", err)
		}
	}

	unexpected := []error{
		nil,
		fmt.Errorf("some other failure"),
		syscall.ECONNREFUSED,
		&websocket.CloseError{Code: websocket.CloseAbnormalClosure},
	}
	for _, err := range unexpected {
		if IsExpectedCloseError(err) {
			t.Errorf("IsExpectedCloseError(%v) = true, want false", err)
		}
	}
}
