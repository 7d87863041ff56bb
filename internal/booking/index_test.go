package booking

import (
	"errors"
	"testing"
)

func collect(seq func(func(Entry) bool)) []Entry {
	var out []Entry
	seq(func(entry Entry) bool {
		out = append(out, entry)
		return true
	})
	return out
}

func TestIndexInsert_PendingCoexists(t *testing.T) {
	t.Parallel()

	ix := NewIndex()
	if err := ix.Insert(Entry{BookingID: "b-1", RoomID: "r-1", Interval: span(t, 9, 0, 10, 0), Status: StatusApproved}); err != nil {
		t.Fatalf("insert approved: %v", err)
	}
	if err := ix.Insert(Entry{BookingID: "b-2", RoomID: "r-1", Interval: span(t, 9, 30, 10, 30), Status: StatusPending}); err != nil {
		t.Fatalf("pending insert must coexist with approved, got %v", err)
	}
	if err := ix.Insert(Entry{BookingID: "b-3", RoomID: "r-1", Interval: span(t, 9, 30, 10, 30), Status: StatusPending}); err != nil {
		t.Fatalf("identical pending intervals must coexist, got %v", err)
	}
}

func TestIndexInsert_ApprovedOverlapFails(t *testing.T) {
	t.Parallel()

	ix := NewIndex()
	if err := ix.Insert(Entry{BookingID: "b-1", RoomID: "r-1", Interval: span(t, 9, 0, 10, 0), Status: StatusApproved}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	err := ix.Insert(Entry{BookingID: "b-2", RoomID: "r-1", Interval: span(t, 9, 30, 10, 30), Status: StatusApproved})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.WithBookingID != "b-1" {
		t.Fatalf("expected conflict with b-1, got %s", conflict.WithBookingID)
	}
}

func TestIndexInsert_DifferentRoomsIndependent(t *testing.T) {
	t.Parallel()

	ix := NewIndex()
	if err := ix.Insert(Entry{BookingID: "b-1", RoomID: "r-1", Interval: span(t, 9, 0, 10, 0), Status: StatusApproved}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := ix.Insert(Entry{BookingID: "b-2", RoomID: "r-2", Interval: span(t, 9, 0, 10, 0), Status: StatusApproved}); err != nil {
		t.Fatalf("another room must not conflict, got %v", err)
	}
}

func TestIndexPromote_ConflictLeavesEntryPending(t *testing.T) {
	t.Parallel()

	ix := NewIndex()
	if err := ix.Insert(Entry{BookingID: "b-1", RoomID: "r-1", Interval: span(t, 9, 0, 10, 0), Status: StatusApproved}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := ix.Insert(Entry{BookingID: "b-2", RoomID: "r-1", Interval: span(t, 9, 30, 10, 30), Status: StatusPending}); err != nil {
		t.Fatalf("insert pending: %v", err)
	}

	err := ix.Promote("r-1", "b-2")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	entries := collect(ix.Query("r-1", Window{}))
	for _, entry := range entries {
		switch entry.BookingID {
		case "b-1":
			if entry.Status != StatusApproved {
				t.Fatalf("b-1 must stay approved, got %s", entry.Status)
			}
		case "b-2":
			if entry.Status != StatusPending {
				t.Fatalf("b-2 must stay pending after failed promote, got %s", entry.Status)
			}
		}
	}
}

func TestIndexPromote_FirstWinsSecondConflicts(t *testing.T) {
	t.Parallel()

	ix := NewIndex()
	interval := span(t, 9, 0, 10, 0)
	if err := ix.Insert(Entry{BookingID: "b-1", RoomID: "r-1", Interval: interval, Status: StatusPending}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := ix.Insert(Entry{BookingID: "b-2", RoomID: "r-1", Interval: interval, Status: StatusPending}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := ix.Promote("r-1", "b-1"); err != nil {
		t.Fatalf("first promote must succeed, got %v", err)
	}

	err := ix.Promote("r-1", "b-2")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError on second promote, got %v", err)
	}
	if conflict.WithBookingID != "b-1" {
		t.Fatalf("expected conflict with b-1, got %s", conflict.WithBookingID)
	}
}

func TestIndexPromote_Missing(t *testing.T) {
	t.Parallel()

	ix := NewIndex()
	if err := ix.Promote("r-1", "b-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIndexRemove_Idempotent(t *testing.T) {
	t.Parallel()

	ix := NewIndex()
	if err := ix.Insert(Entry{BookingID: "b-1", RoomID: "r-1", Interval: span(t, 9, 0, 10, 0), Status: StatusPending}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ix.Remove("r-1", "b-1")
	ix.Remove("r-1", "b-1")

	if entries := collect(ix.Query("r-1", Window{})); len(entries) != 0 {
		t.Fatalf("expected empty room, got %d entries", len(entries))
	}
}

func TestIndexQuery_OrderingAndWindow(t *testing.T) {
	t.Parallel()

	ix := NewIndex()
	inserts := []Entry{
		{BookingID: "b-3", RoomID: "r-1", Interval: span(t, 13, 0, 14, 0), Status: StatusPending},
		{BookingID: "b-2", RoomID: "r-1", Interval: span(t, 9, 0, 10, 0), Status: StatusPending},
		{BookingID: "b-1", RoomID: "r-1", Interval: span(t, 9, 0, 10, 0), Status: StatusPending},
		{BookingID: "b-4", RoomID: "r-1", Interval: span(t, 20, 0, 21, 0), Status: StatusPending},
	}
	for _, entry := range inserts {
		if err := ix.Insert(entry); err != nil {
			t.Fatalf("insert %s: %v", entry.BookingID, err)
		}
	}

	window := Window{Start: at(t, 8, 0), End: at(t, 15, 0)}
	seq := ix.Query("r-1", window)

	got := collect(seq)
	want := []string{"b-1", "b-2", "b-3"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].BookingID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].BookingID)
		}
	}

	// The sequence is restartable: a second pass yields the same snapshot.
	again := collect(seq)
	if len(again) != len(got) {
		t.Fatalf("expected restartable sequence, second pass yielded %d entries", len(again))
	}
}

func TestIndexLoad_RejectsOverlappingApproved(t *testing.T) {
	t.Parallel()

	ix := NewIndex()
	err := ix.Load([]Entry{
		{BookingID: "b-1", RoomID: "r-1", Interval: span(t, 9, 0, 10, 0), Status: StatusApproved},
		{BookingID: "b-2", RoomID: "r-1", Interval: span(t, 9, 30, 10, 30), Status: StatusApproved},
	})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestIndexLoad_SkipsTerminalEntries(t *testing.T) {
	t.Parallel()

	ix := NewIndex()
	err := ix.Load([]Entry{
		{BookingID: "b-1", RoomID: "r-1", Interval: span(t, 9, 0, 10, 0), Status: StatusApproved},
		{BookingID: "b-2", RoomID: "r-1", Interval: span(t, 9, 0, 10, 0), Status: StatusCancelled},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	entries := collect(ix.Query("r-1", Window{}))
	if len(entries) != 1 || entries[0].BookingID != "b-1" {
		t.Fatalf("expected only the approved entry, got %v", entries)
	}
}
