// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"testing"

	"github.com/taskboard-dev/taskboard/lib/ref"
)

func project(id, name string) Project {
	return Project{ID: ref.MustParseProjectID(id), Name: name}
}

func projectNames(mirror []Project) []string {
	names := make([]string, len(mirror))
	for i, p := range mirror {
		names[i] = p.Name
	}
	return names
}

func assertNames(t *testing.T, mirror []Project, want ...string) {
	t.Helper()
	got := projectNames(mirror)
	if len(got) != len(want) {
		t.Fatalf("mirror = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mirror = %v, want %v", got, want)
		}
	}
}

func TestCreatedPrepends(t *testing.T) {
	mirror := []Project{project("1", "OLD")}
	mirror = Created(mirror, project("2", "NEW"))
	assertNames(t, mirror, "NEW", "OLD")
}

func TestCreatedDuplicateIsNoOp(t *testing.T) {
	mirror := []Project{project("1", "ONLY")}
	result := Created(mirror, project("1", "DUPLICATE"))
	assertNames(t, result, "ONLY")
}

func TestAppendedKeepsArrivalOrder(t *testing.T) {
	var mirror []Project
	mirror = Appended(mirror, project("1", "FIRST"))
	mirror = Appended(mirror, project("2", "SECOND"))
	assertNames(t, mirror, "FIRST", "SECOND")
}

func TestAppendedDuplicateIsNoOp(t *testing.T) {
	mirror := []Project{project("1", "ONLY")}
	result := Appended(mirror, project("1", "DUPLICATE"))
	assertNames(t, result, "ONLY")
}

func TestDeletedRemovesOnlyTarget(t *testing.T) {
	mirror := []Project{project("1", "A"), project("2", "B"), project("3", "C")}
	mirror = Deleted(mirror, "2")
	assertNames(t, mirror, "A", "C")
}

func TestDeletedUnknownIDIsNoOp(t *testing.T) {
	mirror := []Project{project("1", "A")}
	result := Deleted(mirror, "99")
	assertNames(t, result, "A")
}

func TestUpdatedReplacesInPlace(t *testing.T) {
	mirror := []Project{project("1", "A"), project("2", "B"), project("3", "C")}
	mirror = Updated(mirror, project("2", "RENAMED"))
	assertNames(t, mirror, "A", "RENAMED", "C")
}

func TestUpdatedUnknownIDIsNoOp(t *testing.T) {
	// An update racing with a delete must not resurrect the entity.
	mirror := []Project{project("1", "A")}
	result := Updated(mirror, project("2", "GHOST"))
	assertNames(t, result, "A")
}

func TestReplacedDiscardsMirror(t *testing.T) {
	mirror := []Project{project("1", "STALE")}
	mirror = Replaced([]Project{project("2", "A"), project("3", "B")})
	assertNames(t, mirror, "A", "B")
}

func TestMergedFetchWinsAndStragglersSurvive(t *testing.T) {
	// "2" arrived over push while the fetch was in flight and is
	// missing from the fetch result; "1" is in both with the fetched
	// name winning.
	mirror := []Project{project("1", "PUSHED-NAME"), project("2", "STRAGGLER")}
	fetched := []Project{project("1", "FETCHED-NAME"), project("3", "FETCHED-ONLY")}

	merged := Merged(mirror, fetched)
	assertNames(t, merged, "FETCHED-NAME", "FETCHED-ONLY", "STRAGGLER")
}

func TestMergedEmptyMirror(t *testing.T) {
	merged := Merged(nil, []Project{project("1", "A")})
	assertNames(t, merged, "A")
}

func TestMergedEmptyFetch(t *testing.T) {
	merged := Merged([]Project{project("1", "A")}, nil)
	assertNames(t, merged, "A")
}

func TestRefreshedDropsEntriesMissingFromFetch(t *testing.T) {
	// "2" predates the fetch and is missing from its result: it was
	// deleted server-side while the connection was down and no delete
	// event will ever arrive for it.
	before := []Project{project("1", "KEPT"), project("2", "DELETED-REMOTELY")}
	fetched := []Project{project("1", "KEPT")}

	refreshed := Refreshed(before, before, fetched)
	assertNames(t, refreshed, "KEPT")
}

func TestRefreshedKeepsEntriesArrivedDuringFetch(t *testing.T) {
	// "3" entered the mirror after the fetch was issued, so its absence
	// from the fetch result means the fetch is older, not that the
	// entity is gone.
	before := []Project{project("1", "OLD")}
	current := []Project{project("1", "OLD"), project("3", "ARRIVED")}
	fetched := []Project{project("1", "OLD"), project("2", "FETCHED")}

	refreshed := Refreshed(before, current, fetched)
	assertNames(t, refreshed, "OLD", "FETCHED", "ARRIVED")
}

func TestRefreshedFetchWinsForSharedIDs(t *testing.T) {
	before := []Project{project("1", "STALE-NAME")}
	fetched := []Project{project("1", "FRESH-NAME")}

	refreshed := Refreshed(before, before, fetched)
	assertNames(t, refreshed, "FRESH-NAME")
}

func TestRefreshedEmptySnapshot(t *testing.T) {
	// A fetch issued against an empty mirror, the room-join case:
	// everything currently in the mirror arrived over push and
	// survives alongside the fetch result.
	current := []Project{project("2", "PUSHED")}
	fetched := []Project{project("1", "FETCHED")}

	refreshed := Refreshed(nil, current, fetched)
	assertNames(t, refreshed, "FETCHED", "PUSHED")
}

func TestReducersDoNotMutateInput(t *testing.T) {
	original := []Project{project("1", "A"), project("2", "B")}
	snapshot := make([]Project, len(original))
	copy(snapshot, original)

	Created(original, project("3", "C"))
	Appended(original, project("4", "D"))
	Deleted(original, "1")
	Updated(original, project("2", "CHANGED"))
	Merged(original, []Project{project("5", "E")})
	Refreshed(original, original, []Project{project("6", "F")})

	assertNames(t, original, "A", "B")
	for i := range snapshot {
		if original[i] != snapshot[i] {
			t.Fatalf("input mirror mutated at %d: %+v", i, original[i])
		}
	}
}

func TestReducersIdempotent(t *testing.T) {
	mirror := []Project{project("1", "A")}

	once := Created(mirror, project("2", "B"))
	twice := Created(once, project("2", "B"))
	assertNames(t, twice, "B", "A")

	once = Deleted(mirror, "1")
	twice = Deleted(once, "1")
	assertNames(t, twice)
}
