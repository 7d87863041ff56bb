// Package sqlite implements the persistence repositories on top of a SQLite
// database accessed through the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Storage bundles the SQLite-backed repositories behind a single handle.
type Storage struct {
	pool *ConnectionPool

	Users    *UserRepository
	Rooms    *RoomRepository
	Bookings *BookingRepository
	Sessions *SessionRepository
}

// Open connects to the database at dsn and wires the repositories.
func Open(dsn string) (*Storage, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}

	return &Storage{
		pool:     pool,
		Users:    NewUserRepository(pool),
		Rooms:    NewRoomRepository(pool),
		Bookings: NewBookingRepository(pool),
		Sessions: NewSessionRepository(pool),
	}, nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Ping verifies database connectivity.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// migrations holds the ordered schema versions. Each entry runs in its own
// transaction exactly once, tracked through the schema_migrations table.
var migrations = []string{
	`CREATE TABLE users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
		display_name  TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL CHECK (role IN ('student', 'lecturer', 'staff')),
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE rooms (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		area       TEXT NOT NULL,
		building   TEXT NOT NULL,
		capacity   INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (building, area, name)
	)`,
	`CREATE TABLE bookings (
		id           TEXT PRIMARY KEY,
		room_id      TEXT NOT NULL REFERENCES rooms (id),
		requester_id TEXT NOT NULL REFERENCES users (id),
		description  TEXT NOT NULL,
		start_time   TEXT NOT NULL,
		end_time     TEXT NOT NULL,
		status       TEXT NOT NULL CHECK (status IN ('Pending', 'Approved', 'Rejected', 'Cancelled')),
		created_by   TEXT NOT NULL REFERENCES users (id),
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL,
		CHECK (start_time < end_time)
	)`,
	`CREATE INDEX idx_bookings_room_start ON bookings (room_id, start_time)`,
	`CREATE TABLE sessions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users (id),
		token      TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		revoked_at TEXT
	)`,
}

// Migrate applies any schema versions missing from the database.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.pool.DB().ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to prepare migration table: %w", err)
	}

	var current int
	err := s.pool.DB().QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for version := current; version < len(migrations); version++ {
		statement := migrations[version]
		err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(statement); err != nil {
				return err
			}
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
				version+1, time.Now().UTC().Format(time.RFC3339),
			)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", version+1, err)
		}
	}

	return nil
}
