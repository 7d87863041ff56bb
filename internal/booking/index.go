package booking

import (
	"errors"
	"iter"
	"sort"
	"sync"
)

// ErrNotFound is returned when an index entry does not exist.
var ErrNotFound = errors.New("booking: entry not found")

// Entry is one active reservation tracked by the availability index.
type Entry struct {
	BookingID string
	RoomID    string
	Interval  Interval
	Status    Status
}

// Index is the authoritative per-room record of active (Pending/Approved)
// intervals. Entries for a room are kept ordered by start ascending, ties by
// booking ID ascending, so queries and conflict checks are deterministic.
//
// The index guards its own state; callers needing check-then-act atomicity
// across the index and a store serialize per room with a Locker.
type Index struct {
	mu    sync.RWMutex
	rooms map[string][]Entry
}

// NewIndex returns an empty availability index.
func NewIndex() *Index {
	return &Index{rooms: make(map[string][]Entry)}
}

// Load replaces the index contents with the provided active entries.
// Approved entries that overlap each other are rejected: the historical
// record must never contain two approved bookings for one slot.
func (ix *Index) Load(entries []Entry) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	rooms := make(map[string][]Entry, len(ix.rooms))
	for _, entry := range entries {
		if !entry.Status.IsActive() {
			continue
		}
		rooms[entry.RoomID] = append(rooms[entry.RoomID], entry)
	}
	for roomID, roomEntries := range rooms {
		sortEntries(roomEntries)
		for i, entry := range roomEntries {
			if entry.Status != StatusApproved {
				continue
			}
			if conflict := CheckConflict(roomEntries[:i], entry.Interval, entry.BookingID); conflict != nil {
				return conflict
			}
		}
		rooms[roomID] = roomEntries
	}

	ix.rooms = rooms
	return nil
}

// Insert adds an entry for a room. Approved entries fail with a
// ConflictError when they overlap another approved entry; pending entries
// always coexist, deferring conflict resolution to approval time.
func (ix *Index) Insert(entry Entry) error {
	if !entry.Interval.Valid() {
		return errors.New("booking: invalid interval")
	}
	if !entry.Status.IsActive() {
		return errors.New("booking: only active entries belong in the index")
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	entries := ix.rooms[entry.RoomID]
	if entry.Status == StatusApproved {
		if conflict := CheckConflict(entries, entry.Interval, entry.BookingID); conflict != nil {
			return conflict
		}
	}

	entries = append(entries, entry)
	sortEntries(entries)
	ix.rooms[entry.RoomID] = entries
	return nil
}

// Promote marks a pending entry Approved, atomically with the conflict check
// against the room's other approved entries.
func (ix *Index) Promote(roomID, bookingID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	entries := ix.rooms[roomID]
	pos := -1
	for i, entry := range entries {
		if entry.BookingID == bookingID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return ErrNotFound
	}

	if conflict := CheckConflict(entries, entries[pos].Interval, bookingID); conflict != nil {
		return conflict
	}

	entries[pos].Status = StatusApproved
	return nil
}

// Remove drops an entry from the room's active set. Removing an absent entry
// is a no-op.
func (ix *Index) Remove(roomID, bookingID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	entries := ix.rooms[roomID]
	for i, entry := range entries {
		if entry.BookingID == bookingID {
			ix.rooms[roomID] = append(entries[:i:i], entries[i+1:]...)
			if len(ix.rooms[roomID]) == 0 {
				delete(ix.rooms, roomID)
			}
			return
		}
	}
}

// Check runs the conflict policy against the room's current approved
// entries without mutating the index.
func (ix *Index) Check(roomID string, candidate Interval, excludingBookingID string) *ConflictError {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return CheckConflict(ix.rooms[roomID], candidate, excludingBookingID)
}

// Query returns a lazy, restartable sequence of the room's entries
// intersecting the window, ordered by start ascending, ties by booking ID.
// The sequence iterates over a snapshot taken when Query is called, so
// concurrent mutations never produce torn reads.
func (ix *Index) Query(roomID string, window Window) iter.Seq[Entry] {
	ix.mu.RLock()
	entries := ix.rooms[roomID]
	snapshot := make([]Entry, len(entries))
	copy(snapshot, entries)
	ix.mu.RUnlock()

	return func(yield func(Entry) bool) {
		for _, entry := range snapshot {
			if !window.Contains(entry.Interval) {
				continue
			}
			if !yield(entry) {
				return
			}
		}
	}
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Interval.Start.Equal(entries[j].Interval.Start) {
			return entries[i].BookingID < entries[j].BookingID
		}
		return entries[i].Interval.Start.Before(entries[j].Interval.Start)
	})
}
