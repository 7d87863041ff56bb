package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

func TestSessionRepository_Lifecycle(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	ctx := context.Background()
	seedUser(t, storage, "user-1", "alice@example.edu", "student")

	issued := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	created, err := storage.Sessions.CreateSession(ctx, persistence.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		Token:     "token-1",
		ExpiresAt: issued.Add(24 * time.Hour),
		CreatedAt: issued,
		UpdatedAt: issued,
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if created.RevokedAt != nil {
		t.Fatalf("fresh session must not be revoked")
	}

	fetched, err := storage.Sessions.GetSession(ctx, "token-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if fetched.UserID != "user-1" {
		t.Fatalf("unexpected session: %+v", fetched)
	}

	revoked, err := storage.Sessions.RevokeSession(ctx, "token-1", issued.Add(time.Hour))
	if err != nil {
		t.Fatalf("revoke session: %v", err)
	}
	if revoked.RevokedAt == nil {
		t.Fatal("expected revoked_at to be set")
	}
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	ctx := context.Background()
	seedUser(t, storage, "user-1", "alice@example.edu", "student")

	issued := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	for i, token := range []string{"stale", "fresh"} {
		expires := issued.Add(time.Duration(i) * 48 * time.Hour)
		if _, err := storage.Sessions.CreateSession(ctx, persistence.Session{
			ID:        "sess-" + token,
			UserID:    "user-1",
			Token:     token,
			ExpiresAt: expires,
			CreatedAt: issued,
			UpdatedAt: issued,
		}); err != nil {
			t.Fatalf("create session %s: %v", token, err)
		}
	}

	if err := storage.Sessions.DeleteExpiredSessions(ctx, issued.Add(24*time.Hour)); err != nil {
		t.Fatalf("delete expired: %v", err)
	}

	if _, err := storage.Sessions.GetSession(ctx, "stale"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected stale session gone, got %v", err)
	}
	if _, err := storage.Sessions.GetSession(ctx, "fresh"); err != nil {
		t.Fatalf("fresh session must survive, got %v", err)
	}
}

func TestSessionRepository_DuplicateToken(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	ctx := context.Background()
	seedUser(t, storage, "user-1", "alice@example.edu", "student")

	issued := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	session := persistence.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		Token:     "token-1",
		ExpiresAt: issued.Add(time.Hour),
		CreatedAt: issued,
		UpdatedAt: issued,
	}
	if _, err := storage.Sessions.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	session.ID = "sess-2"
	if _, err := storage.Sessions.CreateSession(ctx, session); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}
