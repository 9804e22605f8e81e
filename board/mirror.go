// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

// Entity is anything a mirror can hold. The identity string is the
// entity's server-assigned identifier rendered in canonical form; two
// elements with the same identity are the same entity.
type Entity interface {
	EntityID() string
}

// The reducers below are the only way mirror slices change. Each one
// is pure (the input slice is never modified, order of unaffected
// elements is preserved) and idempotent, so replaying a push event
// after a fetch already included its effect cannot corrupt the
// mirror.

// Created prepends entity to the mirror so the newest element renders
// first. If an element with the same identity is already present the
// mirror is returned unchanged.
func Created[E Entity](mirror []E, entity E) []E {
	if containsID(mirror, entity.EntityID()) {
		return mirror
	}
	out := make([]E, 0, len(mirror)+1)
	out = append(out, entity)
	return append(out, mirror...)
}

// Appended adds entity at the end of the mirror, preserving arrival
// order. If an element with the same identity is already present the
// mirror is returned unchanged.
func Appended[E Entity](mirror []E, entity E) []E {
	if containsID(mirror, entity.EntityID()) {
		return mirror
	}
	out := make([]E, 0, len(mirror)+1)
	out = append(out, mirror...)
	return append(out, entity)
}

// Deleted removes the element with the given identity. Unknown
// identities leave the mirror unchanged.
func Deleted[E Entity](mirror []E, id string) []E {
	if !containsID(mirror, id) {
		return mirror
	}
	out := make([]E, 0, len(mirror)-1)
	for _, e := range mirror {
		if e.EntityID() != id {
			out = append(out, e)
		}
	}
	return out
}

// Updated replaces the element matching entity's identity in place,
// keeping its position. Unknown identities leave the mirror
// unchanged: an update for an entity deleted concurrently is a no-op,
// not a resurrection.
func Updated[E Entity](mirror []E, entity E) []E {
	id := entity.EntityID()
	if !containsID(mirror, id) {
		return mirror
	}
	out := make([]E, len(mirror))
	for i, e := range mirror {
		if e.EntityID() == id {
			out[i] = entity
		} else {
			out[i] = e
		}
	}
	return out
}

// Replaced discards the mirror entirely in favor of the fetched
// collection, in server order.
func Replaced[E Entity](fetched []E) []E {
	out := make([]E, len(fetched))
	copy(out, fetched)
	return out
}

// Merged combines a full fetch with elements that arrived over push
// while the fetch was in flight: the fetched collection comes first
// in server order, followed by existing elements whose identity the
// fetch did not include. Push events that raced ahead of the fetch
// are therefore kept, and elements present in both appear once with
// the fetched version winning.
func Merged[E Entity](mirror, fetched []E) []E {
	out := make([]E, 0, len(fetched)+len(mirror))
	out = append(out, fetched...)
	for _, e := range mirror {
		if !containsID(fetched, e.EntityID()) {
			out = append(out, e)
		}
	}
	return out
}

// Refreshed reconciles a full fetch with a mirror that may have
// changed while the fetch was in flight. before is the mirror
// snapshot taken when the fetch was issued, current the mirror at
// resolution time. The fetch is authoritative for everything that
// existed when it was issued: elements in before but absent from
// fetched were deleted server-side and are dropped, never to receive
// another delete event. Elements that entered the mirror after the
// snapshot arrived over push and survive via Merged unless the fetch
// already includes them.
func Refreshed[E Entity](before, current, fetched []E) []E {
	var arrived []E
	for _, e := range current {
		if !containsID(before, e.EntityID()) {
			arrived = append(arrived, e)
		}
	}
	return Merged(arrived, fetched)
}

func containsID[E Entity](mirror []E, id string) bool {
	for _, e := range mirror {
		if e.EntityID() == id {
			return true
		}
	}
	return false
}
