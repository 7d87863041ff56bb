package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// ConflictPolicy selects when overlapping requests are refused.
type ConflictPolicy string

const (
	// ConflictPolicyDeferred accepts overlapping pending requests and resolves
	// conflicts at approval time. This is the default.
	ConflictPolicyDeferred ConflictPolicy = "deferred"
	// ConflictPolicyStrict additionally refuses creation when the requested
	// interval overlaps an approved booking.
	ConflictPolicyStrict ConflictPolicy = "strict"
)

// DefaultPastGrace bounds how far in the past a new booking may start.
const DefaultPastGrace = 24 * time.Hour

// BookingRepository captures the persistence interactions needed by the service.
type BookingRepository interface {
	CreateBooking(ctx context.Context, bk Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status booking.Status, updatedAt time.Time) error
	ListBookings(ctx context.Context, filter BookingRepositoryFilter) ([]Booking, error)
}

// BookingRepositoryFilter narrows queries issued to the booking repository.
// The window is half-open: a booking matches when it intersects
// [StartsAfter, EndsBefore).
type BookingRepositoryFilter struct {
	RoomIDs     []string
	Statuses    []booking.Status
	RequesterID string
	StartsAfter *time.Time
	EndsBefore  *time.Time
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	RoomExists(ctx context.Context, id string) (bool, error)
	RoomIDs(ctx context.Context, building, area string) ([]string, error)
}

// BookingService orchestrates validation, conflict resolution, and persistence
// for the booking lifecycle. All check-then-act sequences for a room run under
// that room's lock, so concurrent requests against the same room serialize.
type BookingService struct {
	bookings    BookingRepository
	rooms       RoomCatalog
	index       *booking.Index
	locks       *booking.Locker
	policy      ConflictPolicy
	pastGrace   time.Duration
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// BookingServiceOption customises service construction.
type BookingServiceOption func(*BookingService)

// WithConflictPolicy overrides the default deferred conflict policy.
func WithConflictPolicy(policy ConflictPolicy) BookingServiceOption {
	return func(s *BookingService) {
		if policy == ConflictPolicyStrict || policy == ConflictPolicyDeferred {
			s.policy = policy
		}
	}
}

// WithPastGrace overrides how far in the past a new booking may start.
func WithPastGrace(grace time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if grace >= 0 {
			s.pastGrace = grace
		}
	}
}

// WithBookingLogger attaches a base logger used when the context carries none.
func WithBookingLogger(logger *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.logger = logger
	}
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings BookingRepository, rooms RoomCatalog, idGenerator func() string, now func() time.Time, opts ...BookingServiceOption) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	svc := &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		index:       booking.NewIndex(),
		locks:       booking.NewLocker(),
		policy:      ConflictPolicyDeferred,
		pastGrace:   DefaultPastGrace,
		idGenerator: idGenerator,
		now:         now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// RebuildIndex replaces the availability index with the active bookings held
// in persistence. Call once at startup before serving requests.
func (s *BookingService) RebuildIndex(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}

	active, err := s.bookings.ListBookings(ctx, BookingRepositoryFilter{
		Statuses: []booking.Status{booking.StatusPending, booking.StatusApproved},
	})
	if err != nil {
		return mapBookingRepoError(err)
	}

	entries := make([]booking.Entry, 0, len(active))
	for _, bk := range active {
		entries = append(entries, booking.Entry{
			BookingID: bk.ID,
			RoomID:    bk.RoomID,
			Interval:  bk.Interval(),
			Status:    bk.Status,
		})
	}
	return s.index.Load(entries)
}

// Create validates the request and records a new pending booking. Under the
// strict policy the requested interval must also be free of approved bookings.
func (s *BookingService) Create(ctx context.Context, params CreateBookingParams) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return Booking{}, fmt.Errorf("booking repository not configured")
	}

	input := params.Input
	logger := serviceLogger(ctx, s.logger, "booking", "create", "room_id", input.RoomID)

	vErr := &ValidationError{}
	s.validateBookingCore(input, vErr)
	if vErr.HasErrors() {
		return Booking{}, vErr
	}

	if err := s.ensureRoomExists(ctx, input.RoomID); err != nil {
		return Booking{}, err
	}

	createdAt := s.now()
	bk := Booking{
		ID:          s.idGenerator(),
		RoomID:      input.RoomID,
		RequesterID: params.Principal.UserID,
		Description: strings.TrimSpace(input.Description),
		Start:       input.Start,
		End:         input.End,
		Status:      booking.StatusPending,
		CreatedBy:   params.Principal.UserID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	unlock := s.locks.Lock(bk.RoomID)
	defer unlock()

	if s.policy == ConflictPolicyStrict {
		if cErr := s.index.Check(bk.RoomID, bk.Interval(), ""); cErr != nil {
			logger.InfoContext(ctx, "booking refused", "error_kind", ErrorKind(cErr), "with_booking_id", cErr.WithBookingID)
			return Booking{}, cErr
		}
	}

	entry := booking.Entry{
		BookingID: bk.ID,
		RoomID:    bk.RoomID,
		Interval:  bk.Interval(),
		Status:    booking.StatusPending,
	}
	if err := s.index.Insert(entry); err != nil {
		return Booking{}, err
	}

	persisted, err := s.bookings.CreateBooking(ctx, bk)
	if err != nil {
		s.index.Remove(bk.RoomID, bk.ID)
		return Booking{}, mapBookingRepoError(err)
	}

	logger.InfoContext(ctx, "booking created", "booking_id", persisted.ID)
	return persisted, nil
}

// Approve promotes a pending booking. The promotion fails with a
// booking.ConflictError when an approved booking already claims an
// overlapping interval, leaving the request pending.
func (s *BookingService) Approve(ctx context.Context, principal Principal, bookingID string) (Booking, error) {
	return s.decide(ctx, principal, bookingID, booking.StatusApproved)
}

// Reject marks a pending booking as rejected and releases its interval.
func (s *BookingService) Reject(ctx context.Context, principal Principal, bookingID string) (Booking, error) {
	return s.decide(ctx, principal, bookingID, booking.StatusRejected)
}

func (s *BookingService) decide(ctx context.Context, principal Principal, bookingID string, target booking.Status) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return Booking{}, fmt.Errorf("booking repository not configured")
	}

	if !principal.IsStaff() {
		return Booking{}, ErrUnauthorized
	}

	existing, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}

	operation := "approve"
	if target == booking.StatusRejected {
		operation = "reject"
	}
	logger := serviceLogger(ctx, s.logger, "booking", operation, "booking_id", bookingID, "room_id", existing.RoomID)

	unlock := s.locks.Lock(existing.RoomID)
	defer unlock()

	// Re-read inside the critical section: the status may have moved between
	// the initial fetch and lock acquisition.
	existing, err = s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}

	if !existing.Status.CanTransitionTo(target) {
		vErr := &ValidationError{}
		vErr.add("status", fmt.Sprintf("booking is %s, only pending bookings can be decided", existing.Status))
		return Booking{}, vErr
	}

	decidedAt := s.now()

	if target == booking.StatusApproved {
		if err := s.index.Promote(existing.RoomID, existing.ID); err != nil {
			var cErr *booking.ConflictError
			if errors.As(err, &cErr) {
				logger.InfoContext(ctx, "approval refused", "error_kind", ErrorKind(cErr), "with_booking_id", cErr.WithBookingID)
				return Booking{}, err
			}
			if errors.Is(err, booking.ErrNotFound) {
				logger.ErrorContext(ctx, "booking missing from availability index", "error", err)
				return Booking{}, ErrNotFound
			}
			return Booking{}, err
		}
		if err := s.bookings.UpdateBookingStatus(ctx, existing.ID, target, decidedAt); err != nil {
			// Demote to keep the index consistent with persistence.
			s.index.Remove(existing.RoomID, existing.ID)
			insertErr := s.index.Insert(booking.Entry{
				BookingID: existing.ID,
				RoomID:    existing.RoomID,
				Interval:  existing.Interval(),
				Status:    booking.StatusPending,
			})
			if insertErr != nil {
				logger.ErrorContext(ctx, "index demotion failed", "error", insertErr)
			}
			return Booking{}, mapBookingRepoError(err)
		}
	} else {
		if err := s.bookings.UpdateBookingStatus(ctx, existing.ID, target, decidedAt); err != nil {
			return Booking{}, mapBookingRepoError(err)
		}
		s.index.Remove(existing.RoomID, existing.ID)
	}

	existing.Status = target
	existing.UpdatedAt = decidedAt

	logger.InfoContext(ctx, "booking decided", "status", string(target))
	return existing, nil
}

// Cancel withdraws a booking. The requester may cancel their own booking;
// staff may cancel any. Cancelling an already cancelled booking is a no-op.
func (s *BookingService) Cancel(ctx context.Context, principal Principal, bookingID string) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return Booking{}, fmt.Errorf("booking repository not configured")
	}

	existing, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}

	if existing.RequesterID != principal.UserID && !principal.IsStaff() {
		return Booking{}, ErrUnauthorized
	}

	unlock := s.locks.Lock(existing.RoomID)
	defer unlock()

	// Re-read inside the critical section: the status may have moved between
	// the initial fetch and lock acquisition.
	existing, err = s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}

	if existing.Status == booking.StatusCancelled {
		return existing, nil
	}

	if !existing.Status.CanTransitionTo(booking.StatusCancelled) {
		vErr := &ValidationError{}
		vErr.add("status", fmt.Sprintf("a %s booking cannot be cancelled", existing.Status))
		return Booking{}, vErr
	}

	cancelledAt := s.now()
	if err := s.bookings.UpdateBookingStatus(ctx, existing.ID, booking.StatusCancelled, cancelledAt); err != nil {
		return Booking{}, mapBookingRepoError(err)
	}
	s.index.Remove(existing.RoomID, existing.ID)

	existing.Status = booking.StatusCancelled
	existing.UpdatedAt = cancelledAt

	serviceLogger(ctx, s.logger, "booking", "cancel", "booking_id", bookingID, "room_id", existing.RoomID).
		InfoContext(ctx, "booking cancelled")
	return existing, nil
}

// CheckAvailability reports whether the interval is free of approved bookings
// for the room, excluding the given booking when set.
func (s *BookingService) CheckAvailability(ctx context.Context, roomID string, iv booking.Interval, excludingBookingID string) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if !iv.Valid() {
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		return vErr
	}
	if err := s.ensureRoomExists(ctx, roomID); err != nil {
		return err
	}
	if cErr := s.index.Check(roomID, iv, excludingBookingID); cErr != nil {
		return cErr
	}
	return nil
}

// ListBookings returns bookings matching the given scope, ordered by start
// time then ID. Listings restricted to active statuses consult the
// availability index and hydrate the matches from persistence; listings that
// include terminal statuses go straight to persistence.
func (s *BookingService) ListBookings(ctx context.Context, params ListBookingsParams) ([]Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return nil, fmt.Errorf("booking repository not configured")
	}

	if err := validateListWindow(params); err != nil {
		return nil, err
	}

	roomIDs, err := s.resolveRoomScope(ctx, params)
	if err != nil {
		return nil, err
	}

	statuses := params.Statuses
	if len(statuses) == 0 {
		statuses = []booking.Status{booking.StatusPending, booking.StatusApproved}
	}
	for _, status := range statuses {
		if !status.IsValid() {
			vErr := &ValidationError{}
			vErr.add("status", fmt.Sprintf("unknown status %q", status))
			return nil, vErr
		}
	}

	filter := BookingRepositoryFilter{
		RoomIDs:     roomIDs,
		Statuses:    statuses,
		StartsAfter: params.WindowStart,
		EndsBefore:  params.WindowEnd,
	}

	bookings, err := s.bookings.ListBookings(ctx, filter)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, mapBookingRepoError(err)
	}

	if activeOnly(statuses) && len(roomIDs) > 0 {
		bookings = s.filterByIndex(bookings, roomIDs, params)
	}

	ordered := make([]Booking, len(bookings))
	copy(ordered, bookings)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Start.Before(ordered[j].Start)
	})
	return ordered, nil
}

// filterByIndex keeps only bookings the availability index still considers
// active in the requested window, guarding against stale persistence reads.
func (s *BookingService) filterByIndex(bookings []Booking, roomIDs []string, params ListBookingsParams) []Booking {
	window := listWindow(params)

	indexed := make(map[string]struct{})
	for _, roomID := range roomIDs {
		for entry := range s.index.Query(roomID, window) {
			indexed[entry.BookingID] = struct{}{}
		}
	}

	kept := bookings[:0]
	for _, bk := range bookings {
		if _, ok := indexed[bk.ID]; ok {
			kept = append(kept, bk)
		}
	}
	return kept
}

func listWindow(params ListBookingsParams) booking.Window {
	var window booking.Window
	if params.WindowStart != nil {
		window.Start = *params.WindowStart
	}
	if params.WindowEnd != nil {
		window.End = *params.WindowEnd
	}
	return window
}

func activeOnly(statuses []booking.Status) bool {
	for _, status := range statuses {
		if !status.IsActive() {
			return false
		}
	}
	return len(statuses) > 0
}

func (s *BookingService) resolveRoomScope(ctx context.Context, params ListBookingsParams) ([]string, error) {
	if params.RoomID != "" {
		return []string{params.RoomID}, nil
	}
	if params.Building == "" && params.Area == "" {
		return nil, nil
	}
	if s.rooms == nil {
		return nil, nil
	}
	ids, err := s.rooms.RoomIDs(ctx, params.Building, params.Area)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		// No rooms in scope means no bookings can match.
		return []string{missingScopeSentinel}, nil
	}
	return ids, nil
}

// missingScopeSentinel is a room ID that can never exist, forcing an empty
// result when a building or area resolves to no rooms.
const missingScopeSentinel = "\x00none"

func validateListWindow(params ListBookingsParams) error {
	if params.WindowStart == nil || params.WindowEnd == nil {
		return nil
	}
	if params.WindowStart.Before(*params.WindowEnd) {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("window", "window start must be before window end")
	return vErr
}

func (s *BookingService) validateBookingCore(input BookingInput, vErr *ValidationError) {
	if strings.TrimSpace(input.RoomID) == "" {
		vErr.add("room_id", "room is required")
	}

	if strings.TrimSpace(input.Description) == "" {
		vErr.add("description", "description is required")
	}

	if input.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if input.End.IsZero() {
		vErr.add("end", "end is required")
	}

	if !input.Start.IsZero() && !input.End.IsZero() && !input.Start.Before(input.End) {
		vErr.add("time", "start must be before end")
	}

	if !input.Start.IsZero() && input.Start.Before(s.now().Add(-s.pastGrace)) {
		vErr.add("start", "start is too far in the past")
	}
}

func (s *BookingService) ensureRoomExists(ctx context.Context, roomID string) error {
	if s.rooms == nil || roomID == "" {
		return nil
	}
	exists, err := s.rooms.RoomExists(ctx, roomID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("room_id", "room does not exist")
	return vErr
}

func mapBookingRepoError(err error) error {
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
		vErr.add("time", "start must be before end")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("room_id", "room does not exist")
		return vErr
	}
	return err
}
