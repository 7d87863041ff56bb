package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool *ConnectionPool
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// CreateRoom inserts a catalog entry.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO rooms (id, name, area, building, capacity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.pool.DB().ExecContext(ctx, query,
		room.ID,
		room.Name,
		room.Area,
		room.Building,
		room.Capacity,
		room.CreatedAt.UTC().Format(time.RFC3339),
		room.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, name, area, building, capacity, created_at, updated_at
		FROM rooms
		WHERE id = ?
	`

	room, err := scanRoom(r.pool.DB().QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Room{}, persistence.ErrNotFound
		}
		return persistence.Room{}, mapError(err)
	}
	return room, nil
}

// ListBuildings returns the distinct building names, ordered.
func (r *RoomRepository) ListBuildings(ctx context.Context) ([]string, error) {
	return r.listStrings(ctx, "SELECT DISTINCT building FROM rooms ORDER BY building ASC")
}

// ListAreas returns the distinct area names within a building, ordered.
func (r *RoomRepository) ListAreas(ctx context.Context, building string) ([]string, error) {
	return r.listStrings(ctx, "SELECT DISTINCT area FROM rooms WHERE building = ? ORDER BY area ASC", building)
}

// ListRooms returns the rooms within an area, ordered by name.
func (r *RoomRepository) ListRooms(ctx context.Context, area string) ([]persistence.Room, error) {
	query := `
		SELECT id, name, area, building, capacity, created_at, updated_at
		FROM rooms
		WHERE area = ?
		ORDER BY name ASC, id ASC
	`

	rows, err := r.pool.DB().QueryContext(ctx, query, area)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows.Scan)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return rooms, nil
}

func (r *RoomRepository) listStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, mapError(err)
		}
		values = append(values, value)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return values, nil
}

func scanRoom(scan func(dest ...any) error) (persistence.Room, error) {
	var room persistence.Room
	var createdAt, updatedAt string

	if err := scan(&room.ID, &room.Name, &room.Area, &room.Building, &room.Capacity, &createdAt, &updatedAt); err != nil {
		return persistence.Room{}, err
	}

	var err error
	if room.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if room.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return room, nil
}
