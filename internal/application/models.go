package application

import (
	"time"

	"github.com/example/room-booking/internal/booking"
)

// Role classifies an account for authorization decisions.
type Role string

const (
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
	RoleStaff    Role = "staff"
)

// ParseRole validates a caller supplied role string.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleStudent, RoleLecturer, RoleStaff:
		return Role(value), true
	}
	return "", false
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Role   Role
}

// IsStaff reports whether the principal holds the elevated staff role.
func (p Principal) IsStaff() bool {
	return p.Role == RoleStaff
}

// BookingInput captures caller provided booking fields.
type BookingInput struct {
	RoomID      string
	Start       time.Time
	End         time.Time
	Description string
}

// Booking represents a persisted reservation request.
type Booking struct {
	ID          string
	RoomID      string
	RequesterID string
	Description string
	Start       time.Time
	End         time.Time
	Status      booking.Status
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Interval returns the booking's half-open time range.
func (b Booking) Interval() booking.Interval {
	return booking.Interval{Start: b.Start, End: b.End}
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// ListBookingsParams narrows booking listings. Building and Area expand to
// their rooms through the catalog; RoomID takes precedence when set. The
// window is half-open; Statuses defaults to the active set.
type ListBookingsParams struct {
	Building    string
	Area        string
	RoomID      string
	WindowStart *time.Time
	WindowEnd   *time.Time
	Statuses    []booking.Status
}

// Room represents a catalog entry for a bookable room.
type Room struct {
	ID        string
	Name      string
	Area      string
	Building  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name     string
	Area     string
	Building string
	Capacity int
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// User represents a registered account exposed by the application services.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserCredentials pairs an account with its stored password hash.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// RegisterParams captures the data required to register an account.
type RegisterParams struct {
	Email       string
	DisplayName string
	Password    string
	Role        Role
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful login.
type AuthenticateResult struct {
	User    User
	Session Session
}
