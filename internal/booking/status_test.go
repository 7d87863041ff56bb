package booking

import "testing"

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusApproved, StatusCancelled, true},
		{StatusApproved, StatusRejected, false},
		{StatusRejected, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	if !StatusRejected.IsTerminal() || !StatusCancelled.IsTerminal() {
		t.Fatal("rejected and cancelled must be terminal")
	}
	if StatusPending.IsTerminal() || StatusApproved.IsTerminal() {
		t.Fatal("pending and approved must not be terminal")
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	if _, err := ParseStatus("Approved"); err != nil {
		t.Fatalf("expected Approved to parse, got %v", err)
	}
	if _, err := ParseStatus("approved"); err == nil {
		t.Fatal("statuses are case sensitive")
	}
	if _, err := ParseStatus("Unknown"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}

func TestStatusActive(t *testing.T) {
	t.Parallel()

	for _, s := range []Status{StatusPending, StatusApproved} {
		if !s.IsActive() {
			t.Errorf("%s must be active", s)
		}
	}
	for _, s := range []Status{StatusRejected, StatusCancelled} {
		if s.IsActive() {
			t.Errorf("%s must not be active", s)
		}
	}
}
