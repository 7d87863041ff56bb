package booking

import "fmt"

// Status represents the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

// validTransitions defines the booking state machine. Rejected and Cancelled
// are terminal.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusCancelled},
	StatusRejected:  {},
	StatusCancelled: {},
}

// ParseStatus validates a caller supplied status string.
func ParseStatus(value string) (Status, error) {
	status := Status(value)
	if _, ok := validTransitions[status]; !ok {
		return "", fmt.Errorf("booking: unknown status %q", value)
	}
	return status, nil
}

// IsValid reports whether the status is a recognized lifecycle state.
func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine permits moving from the
// receiver to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return true
	}
	return len(allowed) == 0
}

// IsActive reports whether the booking occupies its room slot. Only active
// bookings live in the availability index.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}
