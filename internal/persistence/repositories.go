package persistence

import (
	"context"
	"time"
)

// UserRepository exposes account storage operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// RoomRepository exposes the building/area/room catalog.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListBuildings(ctx context.Context) ([]string, error)
	ListAreas(ctx context.Context, building string) ([]string, error)
	ListRooms(ctx context.Context, area string) ([]Room, error)
}

// BookingFilter narrows booking queries. Empty fields leave that dimension
// unconstrained. The window is half-open: a booking matches when it
// intersects [StartsAfter, EndsBefore).
type BookingFilter struct {
	RoomIDs     []string
	Statuses    []string
	RequesterID string
	StartsAfter *time.Time
	EndsBefore  *time.Time
}

// BookingRepository stores the full booking history.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string, updatedAt time.Time) error
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
