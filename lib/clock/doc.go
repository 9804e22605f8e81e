// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source with a
// deterministic fake for tests.
//
// Production code that waits on wall-clock time (the push channel's
// reconnect backoff) accepts a [Clock] instead of calling the time
// package directly. Tests inject a [FakeClock] and drive it with
// Advance, which fires pending waiters in deadline order, and
// WaitForTimers, which removes the race between a goroutine
// registering a wait and the test advancing past it.
package clock
