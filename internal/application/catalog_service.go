package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// RoomCatalogRepository captures the persistence operations needed by the service.
type RoomCatalogRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	ListBuildings(ctx context.Context) ([]string, error)
	ListAreas(ctx context.Context, building string) ([]string, error)
	ListRooms(ctx context.Context, area string) ([]Room, error)
}

// CatalogService exposes the building, area, and room hierarchy. It also
// satisfies the RoomCatalog interface consumed by the booking service.
type CatalogService struct {
	rooms       RoomCatalogRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCatalogService constructs a catalog service with the provided dependencies.
func NewCatalogService(rooms RoomCatalogRepository, idGenerator func() string, now func() time.Time) *CatalogService {
	return NewCatalogServiceWithLogger(rooms, idGenerator, now, nil)
}

// NewCatalogServiceWithLogger constructs a catalog service with a specified logger.
func NewCatalogServiceWithLogger(rooms RoomCatalogRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CatalogService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CatalogService{rooms: rooms, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *CatalogService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CatalogService", operation, attrs...)
}

// CreateRoom validates input and persists a new room. Staff only.
func (s *CatalogService) CreateRoom(ctx context.Context, params CreateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !params.Principal.IsStaff() {
		err = ErrUnauthorized
		return
	}

	vErr := validateRoomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	room = Room{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(params.Input.Name),
		Area:      strings.TrimSpace(params.Input.Area),
		Building:  strings.TrimSpace(params.Input.Building),
		Capacity:  params.Input.Capacity,
		CreatedAt: s.now(),
	}
	room.UpdatedAt = room.CreatedAt

	var persisted Room
	persisted, err = s.rooms.CreateRoom(ctx, room)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	room = persisted
	return
}

// Buildings lists the distinct buildings in the catalog, alphabetically.
func (s *CatalogService) Buildings(ctx context.Context) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("CatalogService is nil")
	}
	if s.rooms == nil {
		return nil, nil
	}

	buildings, err := s.rooms.ListBuildings(ctx)
	if err != nil {
		s.loggerWith(ctx, "Buildings").ErrorContext(ctx, "failed to list buildings", "error", err)
		return nil, err
	}
	sort.Strings(buildings)
	return buildings, nil
}

// Areas lists the distinct areas within a building, alphabetically.
func (s *CatalogService) Areas(ctx context.Context, building string) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("CatalogService is nil")
	}
	if strings.TrimSpace(building) == "" {
		vErr := &ValidationError{}
		vErr.add("building", "building is required")
		return nil, vErr
	}
	if s.rooms == nil {
		return nil, nil
	}

	areas, err := s.rooms.ListAreas(ctx, building)
	if err != nil {
		s.loggerWith(ctx, "Areas", "building", building).ErrorContext(ctx, "failed to list areas", "error", err)
		return nil, err
	}
	sort.Strings(areas)
	return areas, nil
}

// Rooms lists the rooms within an area, ordered by name then ID.
func (s *CatalogService) Rooms(ctx context.Context, area string) ([]Room, error) {
	if s == nil {
		return nil, fmt.Errorf("CatalogService is nil")
	}
	if strings.TrimSpace(area) == "" {
		vErr := &ValidationError{}
		vErr.add("area", "area is required")
		return nil, vErr
	}
	if s.rooms == nil {
		return nil, nil
	}

	raw, err := s.rooms.ListRooms(ctx, area)
	if err != nil {
		s.loggerWith(ctx, "Rooms", "area", area).ErrorContext(ctx, "failed to list rooms", "error", err)
		return nil, err
	}

	rooms := make([]Room, len(raw))
	copy(rooms, raw)
	sort.Slice(rooms, func(i, j int) bool {
		if strings.EqualFold(rooms[i].Name, rooms[j].Name) {
			return rooms[i].ID < rooms[j].ID
		}
		return strings.ToLower(rooms[i].Name) < strings.ToLower(rooms[j].Name)
	})
	return rooms, nil
}

// RoomExists reports whether a room with the given ID is in the catalog.
func (s *CatalogService) RoomExists(ctx context.Context, id string) (bool, error) {
	if s == nil || s.rooms == nil {
		return false, nil
	}
	_, err := s.rooms.GetRoom(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// RoomIDs resolves a building or area scope to the IDs of its rooms. An empty
// area expands to every area in the building.
func (s *CatalogService) RoomIDs(ctx context.Context, building, area string) ([]string, error) {
	if s == nil || s.rooms == nil {
		return nil, nil
	}

	areas := []string{area}
	if area == "" {
		if building == "" {
			return nil, nil
		}
		listed, err := s.rooms.ListAreas(ctx, building)
		if err != nil {
			return nil, err
		}
		areas = listed
	}

	ids := make([]string, 0)
	for _, a := range areas {
		rooms, err := s.rooms.ListRooms(ctx, a)
		if err != nil {
			return nil, err
		}
		for _, room := range rooms {
			if building != "" && room.Building != building {
				continue
			}
			ids = append(ids, room.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.Area) == "" {
		vErr.add("area", "area is required")
	}
	if strings.TrimSpace(input.Building) == "" {
		vErr.add("building", "building is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}

	return vErr
}

func mapCatalogRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("capacity", "capacity must be positive")
		return vErr
	}
	return err
}
