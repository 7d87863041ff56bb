package booking

import "time"

// Interval is a half-open time range [Start, End). Back-to-back intervals
// share a boundary instant without overlapping.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the interval has a positive, well-ordered extent.
func (iv Interval) Valid() bool {
	return !iv.Start.IsZero() && !iv.End.IsZero() && iv.Start.Before(iv.End)
}

// Overlaps reports whether two half-open intervals share any instant:
// [s1,e1) and [s2,e2) overlap iff s1 < e2 && s2 < e1.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Window is a query time range. A zero Start or End leaves that bound open.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the interval intersects the window.
func (w Window) Contains(iv Interval) bool {
	if !w.Start.IsZero() && !iv.End.After(w.Start) {
		return false
	}
	if !w.End.IsZero() && !iv.Start.Before(w.End) {
		return false
	}
	return true
}
