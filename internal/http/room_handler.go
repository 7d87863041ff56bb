package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/room-booking/internal/application"
)

type catalogService interface {
	CreateRoom(ctx context.Context, params application.CreateRoomParams) (application.Room, error)
	Buildings(ctx context.Context) ([]string, error)
	Areas(ctx context.Context, building string) ([]string, error)
	Rooms(ctx context.Context, area string) ([]application.Room, error)
}

type RoomHandler struct {
	service   catalogService
	responder responder
	logger    *slog.Logger
}

func NewRoomHandler(service catalogService, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

// Buildings lists the distinct buildings in the catalog.
func (h *RoomHandler) Buildings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	buildings, err := h.service.Buildings(r.Context())
	if err != nil {
		h.log(r.Context(), "Buildings").ErrorContext(r.Context(), "failed to list buildings", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if buildings == nil {
		buildings = []string{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, buildings)
}

// Areas lists the areas within the building named in the path.
func (h *RoomHandler) Areas(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	building := chi.URLParam(r, "building")
	areas, err := h.service.Areas(r.Context(), building)
	if err != nil {
		h.log(r.Context(), "Areas", "building", building).ErrorContext(r.Context(), "failed to list areas", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if areas == nil {
		areas = []string{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, areas)
}

// Rooms lists the rooms within the area named in the path.
func (h *RoomHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	area := chi.URLParam(r, "area")
	rooms, err := h.service.Rooms(r.Context(), area)
	if err != nil {
		h.log(r.Context(), "Rooms", "area", area).ErrorContext(r.Context(), "failed to list rooms", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		dtos = append(dtos, toRoomDTO(room))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// Create adds a room to the catalog.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	room, err := h.service.CreateRoom(r.Context(), application.CreateRoomParams{
		Principal: principal,
		Input: application.RoomInput{
			Name:     req.Name,
			Area:     req.Area,
			Building: req.Building,
			Capacity: req.Capacity,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create room", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("room_id", room.ID).InfoContext(r.Context(), "room created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toRoomDTO(room))
}

type roomRequest struct {
	Name     string `json:"name"`
	Area     string `json:"area"`
	Building string `json:"building"`
	Capacity int    `json:"capacity"`
}

type roomDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Area      string `json:"area"`
	Building  string `json:"building"`
	Capacity  int    `json:"capacity"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toRoomDTO(room application.Room) roomDTO {
	dto := roomDTO{
		ID:       room.ID,
		Name:     room.Name,
		Area:     room.Area,
		Building: room.Building,
		Capacity: room.Capacity,
	}
	if !room.CreatedAt.IsZero() {
		dto.CreatedAt = room.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return dto
}
