// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared helpers for tests.
//
// The Require* helpers wrap channel operations with a timeout safety
// valve so tests that exercise the push channel and session wiring
// fail with a message instead of hanging when an expected event never
// arrives.
package testutil
