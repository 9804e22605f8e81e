// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package board implements the client core for a shared, multi-user
// project and task board: local mirrors of the backend collections,
// kept consistent in real time across all connected participants.
//
// The package provides five cooperating pieces. [Client] is the
// stateless REST mutation client for the project and task resources
// (plus the sentiment classifier used to tag new tasks). [Channel] is
// the push side: a persistent, auto-reconnecting websocket that
// delivers named mutation events from the backend and carries the
// room join/leave commands. [Membership] tracks which single project
// room the session occupies and sequences the leave/join commands on
// a switch. The reducers in mirror.go are the Collection Reconciler:
// pure, idempotent functions that merge REST fetch results and push
// events into the ordered mirrors. [Session] is the orchestrator that
// wires all of them to a user identity.
//
// The design rests on one policy: mirrors change only through push
// events and full fetches, never from the result of a REST mutation
// the local session issued. The backend broadcasts every mutation to
// all room members including the originator, so a single code path,
// the reducers, produces the mirror state no matter which participant
// triggered the change. The duplicate-id guard in the
// reducers makes the rare REST/push races harmless.
//
// All API errors are returned as [*APIError] with the HTTP status
// code and the server's message; [IsAPIError] tests for a specific
// status. There is no fatal error path: a failed mutation is logged
// and simply never appears in the mirrors.
package board
