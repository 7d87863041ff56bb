package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/testfixtures"
)

type testServer struct {
	router http.Handler
	clock  *testfixtures.Clock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	harness := testfixtures.NewSQLiteHarness(t)
	factory := testfixtures.NewServiceFactory()

	hasher := func(password string) (string, error) {
		return "plain:" + password, nil
	}
	verifier := func(hashedPassword, password string) error {
		if hashedPassword != "plain:"+password {
			return errors.New("password mismatch")
		}
		return nil
	}

	catalogService := factory.NewCatalogService(testfixtures.CatalogServiceDeps{
		Rooms: newCatalogRepositoryAdapter(harness.Rooms),
	})
	userService := factory.NewUserService(testfixtures.UserServiceDeps{
		Users:        newUserRepositoryAdapter(harness.Users),
		HashPassword: hasher,
	})
	authService := factory.NewAuthService(testfixtures.AuthServiceDeps{
		Credentials:    newCredentialStoreAdapter(harness.Users),
		Sessions:       newSessionRepositoryAdapter(harness.Sessions),
		PasswordVerify: verifier,
		TokenGenerator: testfixtures.NewIDGenerator("token").NextFunc(),
		SessionTTL:     time.Hour,
	})
	bookingService := factory.NewBookingService(testfixtures.BookingServiceDeps{
		Bookings: newBookingRepositoryAdapter(harness.Bookings),
		Rooms:    catalogService,
	})

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(authService, userService, nil),
		Rooms:    httptransport.NewRoomHandler(catalogService, nil),
		Bookings: httptransport.NewBookingHandler(bookingService, nil),
		Sessions: authService,
	})

	return &testServer{router: router, clock: factory.Clock}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, email, role string) {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":        email,
		"display_name": "Test " + email,
		"password":     "correct horse battery",
		"role":         role,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%s)", email, rec.Code, rec.Body.String())
	}
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": "correct horse battery",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("login %s: expected 201, got %d (%s)", email, rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return resp.Token
}

func TestAPIBookingLifecycle(t *testing.T) {
	server := newTestServer(t)

	server.register(t, "staff@example.com", "staff")
	server.register(t, "student@example.com", "student")
	staffToken := server.login(t, "staff@example.com")
	studentToken := server.login(t, "student@example.com")

	rec := server.do(t, http.MethodPost, "/api/rooms", staffToken, map[string]any{
		"name":     "Seminar Room A",
		"area":     "ground-floor",
		"building": "main",
		"capacity": 12,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create room: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var room struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&room); err != nil {
		t.Fatalf("failed to decode room response: %v", err)
	}

	start := server.clock.Current().Add(2 * time.Hour)
	end := start.Add(time.Hour)

	rec = server.do(t, http.MethodPost, "/api/bookings", studentToken, map[string]any{
		"room_id":     room.ID,
		"start":       start.Format(time.RFC3339),
		"end":         end.Format(time.RFC3339),
		"description": "study group",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create booking: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var first struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&first); err != nil {
		t.Fatalf("failed to decode booking response: %v", err)
	}
	if first.Status != string(booking.StatusPending) {
		t.Fatalf("expected new booking to be Pending, got %q", first.Status)
	}

	// An overlapping request from another interval of the same room is
	// accepted while both remain pending.
	rec = server.do(t, http.MethodPost, "/api/bookings", studentToken, map[string]any{
		"room_id":     room.ID,
		"start":       start.Add(30 * time.Minute).Format(time.RFC3339),
		"end":         end.Add(30 * time.Minute).Format(time.RFC3339),
		"description": "club meeting",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create overlapping booking: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var second struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&second); err != nil {
		t.Fatalf("failed to decode booking response: %v", err)
	}

	rec = server.do(t, http.MethodPut, "/api/bookings/"+first.ID, studentToken, map[string]any{
		"status": "Approved",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student approval: expected 403, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = server.do(t, http.MethodPut, "/api/bookings/"+first.ID, staffToken, map[string]any{
		"status": "Approved",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve booking: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = server.do(t, http.MethodPut, "/api/bookings/"+second.ID, staffToken, map[string]any{
		"status": "Approved",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("approve losing booking: expected 409, got %d (%s)", rec.Code, rec.Body.String())
	}
	var conflict struct {
		ErrorCode     string `json:"error_code"`
		WithBookingID string `json:"with_booking_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&conflict); err != nil {
		t.Fatalf("failed to decode conflict response: %v", err)
	}
	if conflict.ErrorCode != "BOOKING_CONFLICT" {
		t.Fatalf("expected BOOKING_CONFLICT, got %q", conflict.ErrorCode)
	}
	if conflict.WithBookingID != first.ID {
		t.Fatalf("expected conflict with %q, got %q", first.ID, conflict.WithBookingID)
	}

	rec = server.do(t, http.MethodGet, "/api/bookings?room_id="+room.ID, studentToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list bookings: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var listed []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 active bookings, got %d", len(listed))
	}
	if listed[0].ID != first.ID || listed[0].Status != string(booking.StatusApproved) {
		t.Fatalf("unexpected first listing: %+v", listed[0])
	}

	rec = server.do(t, http.MethodDelete, "/api/bookings/"+second.ID, studentToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("cancel booking: expected 204, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestIndexRebuildSeedsFromStorage(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	factory := testfixtures.NewServiceFactory()
	ctx := context.Background()

	requester := testfixtures.NewUserFixture()
	if err := harness.Users.CreateUser(ctx, requester.Persistence()); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	room := testfixtures.NewRoomFixture()
	if err := harness.Rooms.CreateRoom(ctx, room.Persistence()); err != nil {
		t.Fatalf("failed to seed room: %v", err)
	}

	start := testfixtures.ReferenceTime().Add(time.Hour)
	approved := testfixtures.NewBookingFixture(
		testfixtures.WithBookingRoom(room.ID),
		testfixtures.WithBookingRequester(requester.ID),
		testfixtures.WithBookingWindow(start, start.Add(time.Hour)),
		testfixtures.WithBookingStatus(booking.StatusApproved),
	)
	if err := harness.Bookings.CreateBooking(ctx, approved.Persistence()); err != nil {
		t.Fatalf("failed to seed booking: %v", err)
	}

	catalogService := factory.NewCatalogService(testfixtures.CatalogServiceDeps{
		Rooms: newCatalogRepositoryAdapter(harness.Rooms),
	})
	svc := factory.NewBookingService(testfixtures.BookingServiceDeps{
		Bookings: newBookingRepositoryAdapter(harness.Bookings),
		Rooms:    catalogService,
		Options:  []application.BookingServiceOption{application.WithConflictPolicy(application.ConflictPolicyStrict)},
	})

	if err := svc.RebuildIndex(ctx); err != nil {
		t.Fatalf("RebuildIndex returned error: %v", err)
	}

	_, err := svc.Create(ctx, application.CreateBookingParams{
		Principal: requester.Principal(),
		Input: application.BookingInput{
			RoomID:      room.ID,
			Start:       start.Add(30 * time.Minute),
			End:         start.Add(90 * time.Minute),
			Description: "rehearsal",
		},
	})
	var conflictErr *booking.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected conflict after rebuild, got %v", err)
	}
	if conflictErr.WithBookingID != approved.ID {
		t.Fatalf("expected conflict with %q, got %q", approved.ID, conflictErr.WithBookingID)
	}

	// A slot adjacent to the approved booking is still free.
	created, err := svc.Create(ctx, application.CreateBookingParams{
		Principal: requester.Principal(),
		Input: application.BookingInput{
			RoomID:      room.ID,
			Start:       start.Add(time.Hour),
			End:         start.Add(2 * time.Hour),
			Description: "rehearsal",
		},
	})
	if err != nil {
		t.Fatalf("adjacent create returned error: %v", err)
	}
	if created.Status != booking.StatusPending {
		t.Fatalf("expected Pending, got %q", created.Status)
	}
}
