package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

func seedBooking(t *testing.T, storage *Storage, id, roomID, requesterID, status string, start, end time.Time) persistence.Booking {
	t.Helper()

	booking := persistence.Booking{
		ID:          id,
		RoomID:      roomID,
		RequesterID: requesterID,
		Description: "Team meeting",
		Start:       start,
		End:         end,
		Status:      status,
		CreatedBy:   requesterID,
		CreatedAt:   start.Add(-24 * time.Hour),
		UpdatedAt:   start.Add(-24 * time.Hour),
	}
	if err := storage.Bookings.CreateBooking(context.Background(), booking); err != nil {
		t.Fatalf("failed to seed booking %s: %v", id, err)
	}
	return booking
}

func day(t *testing.T, hour int) time.Time {
	t.Helper()
	return time.Date(2024, 6, 3, hour, 0, 0, 0, time.UTC)
}

func TestBookingRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	seedUser(t, storage, "user-1", "alice@example.edu", "student")
	seedRoom(t, storage, "room-1", "101", "West Wing", "Engineering")

	created := seedBooking(t, storage, "b-1", "room-1", "user-1", "Pending", day(t, 9), day(t, 10))

	fetched, err := storage.Bookings.GetBooking(context.Background(), "b-1")
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if fetched.Status != "Pending" || !fetched.Start.Equal(created.Start) || fetched.RoomID != "room-1" {
		t.Fatalf("fetched booking mismatch: %+v", fetched)
	}
}

func TestBookingRepository_ForeignKeys(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	seedUser(t, storage, "user-1", "alice@example.edu", "student")

	err := storage.Bookings.CreateBooking(context.Background(), persistence.Booking{
		ID:          "b-1",
		RoomID:      "missing-room",
		RequesterID: "user-1",
		Description: "x",
		Start:       day(t, 9),
		End:         day(t, 10),
		Status:      "Pending",
		CreatedBy:   "user-1",
	})
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}

func TestBookingRepository_InvertedIntervalRejected(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	seedUser(t, storage, "user-1", "alice@example.edu", "student")
	seedRoom(t, storage, "room-1", "101", "West Wing", "Engineering")

	err := storage.Bookings.CreateBooking(context.Background(), persistence.Booking{
		ID:          "b-1",
		RoomID:      "room-1",
		RequesterID: "user-1",
		Description: "x",
		Start:       day(t, 10),
		End:         day(t, 9),
		Status:      "Pending",
		CreatedBy:   "user-1",
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	ctx := context.Background()
	seedUser(t, storage, "user-1", "alice@example.edu", "student")
	seedRoom(t, storage, "room-1", "101", "West Wing", "Engineering")
	seedBooking(t, storage, "b-1", "room-1", "user-1", "Pending", day(t, 9), day(t, 10))

	if err := storage.Bookings.UpdateBookingStatus(ctx, "b-1", "Approved", day(t, 11)); err != nil {
		t.Fatalf("update status: %v", err)
	}

	fetched, err := storage.Bookings.GetBooking(ctx, "b-1")
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if fetched.Status != "Approved" {
		t.Fatalf("expected Approved, got %s", fetched.Status)
	}

	if err := storage.Bookings.UpdateBookingStatus(ctx, "missing", "Approved", day(t, 11)); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookingRepository_ListFilters(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	ctx := context.Background()
	seedUser(t, storage, "user-1", "alice@example.edu", "student")
	seedUser(t, storage, "user-2", "bob@example.edu", "student")
	seedRoom(t, storage, "room-1", "101", "West Wing", "Engineering")
	seedRoom(t, storage, "room-2", "102", "West Wing", "Engineering")

	seedBooking(t, storage, "b-2", "room-1", "user-1", "Pending", day(t, 9), day(t, 10))
	seedBooking(t, storage, "b-1", "room-1", "user-2", "Approved", day(t, 9), day(t, 10))
	seedBooking(t, storage, "b-3", "room-2", "user-1", "Pending", day(t, 13), day(t, 14))
	seedBooking(t, storage, "b-4", "room-1", "user-1", "Cancelled", day(t, 20), day(t, 21))

	// Window [00:00, 15:00) over room-1: the late booking drops out, and the
	// identical 9 o'clock starts order by ID.
	windowStart := day(t, 0)
	windowEnd := day(t, 15)
	listed, err := storage.Bookings.ListBookings(ctx, persistence.BookingFilter{
		RoomIDs:     []string{"room-1"},
		StartsAfter: &windowStart,
		EndsBefore:  &windowEnd,
	})
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "b-1" || listed[1].ID != "b-2" {
		t.Fatalf("unexpected listing: %+v", listed)
	}

	// Status filter isolates the active portion of the history.
	active, err := storage.Bookings.ListBookings(ctx, persistence.BookingFilter{
		Statuses: []string{"Pending", "Approved"},
	})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("expected 3 active bookings, got %d", len(active))
	}

	// Requester filter.
	mine, err := storage.Bookings.ListBookings(ctx, persistence.BookingFilter{RequesterID: "user-2"})
	if err != nil {
		t.Fatalf("list by requester: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "b-1" {
		t.Fatalf("unexpected requester listing: %+v", mine)
	}
}
