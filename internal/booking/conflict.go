package booking

import "fmt"

// ConflictError reports that a candidate interval overlaps an approved
// booking for the same room. The conflicting booking is named so callers can
// surface it for diagnostics or human arbitration.
type ConflictError struct {
	RoomID        string
	WithBookingID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking: interval conflicts with approved booking %s in room %s", e.WithBookingID, e.RoomID)
}

// CheckConflict decides whether a candidate interval may hold an approved
// slot given the existing entries for a room. Only Approved entries block:
// pending requests for the same slot coexist until staff arbitrate at
// approval time. An entry matching excludingBookingID is ignored so a
// booking never conflicts with itself.
//
// Entries are expected ordered by start ascending; the first overlapping
// approved entry wins, keeping the reported conflict deterministic.
func CheckConflict(entries []Entry, candidate Interval, excludingBookingID string) *ConflictError {
	for _, entry := range entries {
		if entry.Status != StatusApproved {
			continue
		}
		if entry.BookingID == excludingBookingID {
			continue
		}
		if entry.Interval.Overlaps(candidate) {
			return &ConflictError{RoomID: entry.RoomID, WithBookingID: entry.BookingID}
		}
	}
	return nil
}
