package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
)

type bookingService interface {
	Create(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	Approve(ctx context.Context, principal application.Principal, bookingID string) (application.Booking, error)
	Reject(ctx context.Context, principal application.Principal, bookingID string) (application.Booking, error)
	Cancel(ctx context.Context, principal application.Principal, bookingID string) (application.Booking, error)
	ListBookings(ctx context.Context, params application.ListBookingsParams) ([]application.Booking, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

// List returns bookings matching the query parameters.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, err := parseListParams(r)
	if err != nil {
		h.log(r.Context(), "List", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to parse listing query", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	bookings, err := h.service.ListBookings(r.Context(), params)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list bookings", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]bookingDTO, 0, len(bookings))
	for _, bk := range bookings {
		dtos = append(dtos, toBookingDTO(bk))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// Create submits a new booking request, recorded as Pending.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "room_id", req.RoomID)

	bk, err := h.service.Create(r.Context(), application.CreateBookingParams{
		Principal: principal,
		Input: application.BookingInput{
			RoomID:      req.RoomID,
			Start:       req.Start,
			End:         req.End,
			Description: req.Description,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create booking", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", bk.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toBookingDTO(bk))
}

// Decide approves or rejects the pending booking named in the path.
func (h *BookingHandler) Decide(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Decide", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode decision request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Decide", "principal_id", principal.UserID, "booking_id", bookingID, "status", req.Status)

	var (
		bk  application.Booking
		err error
	)
	status, parseErr := booking.ParseStatus(req.Status)
	switch {
	case parseErr == nil && status == booking.StatusApproved:
		bk, err = h.service.Approve(r.Context(), principal, bookingID)
	case parseErr == nil && status == booking.StatusRejected:
		bk, err = h.service.Reject(r.Context(), principal, bookingID)
	default:
		vErr := &application.ValidationError{FieldErrors: map[string]string{
			"status": "status must be Approved or Rejected",
		}}
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to decide booking", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking decided")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBookingDTO(bk))
}

// Cancel withdraws the booking named in the path.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	logger := h.log(r.Context(), "Cancel", "principal_id", principal.UserID, "booking_id", bookingID)

	if _, err := h.service.Cancel(r.Context(), principal, bookingID); err != nil {
		logger.ErrorContext(r.Context(), "failed to cancel booking", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func parseListParams(r *http.Request) (application.ListBookingsParams, error) {
	query := r.URL.Query()
	params := application.ListBookingsParams{
		Building: strings.TrimSpace(query.Get("building")),
		Area:     strings.TrimSpace(query.Get("area")),
		RoomID:   strings.TrimSpace(query.Get("room_id")),
	}

	if raw := strings.TrimSpace(query.Get("from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return application.ListBookingsParams{}, errBadRequestBody
		}
		params.WindowStart = &from
	}
	if raw := strings.TrimSpace(query.Get("to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return application.ListBookingsParams{}, errBadRequestBody
		}
		params.WindowEnd = &to
	}

	for _, raw := range query["status"] {
		status, err := booking.ParseStatus(strings.TrimSpace(raw))
		if err != nil {
			return application.ListBookingsParams{}, err
		}
		params.Statuses = append(params.Statuses, status)
	}

	return params, nil
}

type bookingRequest struct {
	RoomID      string    `json:"room_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description"`
}

type decisionRequest struct {
	Status string `json:"status"`
}

type bookingDTO struct {
	ID          string `json:"id"`
	RoomID      string `json:"room_id"`
	RequesterID string `json:"requester_id"`
	Description string `json:"description"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func toBookingDTO(bk application.Booking) bookingDTO {
	dto := bookingDTO{
		ID:          bk.ID,
		RoomID:      bk.RoomID,
		RequesterID: bk.RequesterID,
		Description: bk.Description,
		Start:       bk.Start.UTC().Format(time.RFC3339Nano),
		End:         bk.End.UTC().Format(time.RFC3339Nano),
		Status:      string(bk.Status),
	}
	if !bk.CreatedAt.IsZero() {
		dto.CreatedAt = bk.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !bk.UpdatedAt.IsZero() {
		dto.UpdatedAt = bk.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return dto
}
