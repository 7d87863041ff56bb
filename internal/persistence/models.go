package persistence

import "time"

// User represents a registered account in the booking domain.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room represents a bookable room within the building/area catalog. Area and
// Building are the catalog drill-down attributes shown to users.
type Room struct {
	ID        string
	Name      string
	Area      string
	Building  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking is the historical record of a reservation request. Terminal rows
// (Rejected/Cancelled) stay in the table; only active rows feed the
// availability index.
type Booking struct {
	ID          string
	RoomID      string
	RequesterID string
	Description string
	Start       time.Time
	End         time.Time
	Status      string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
