package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rbac-labs/user-service/internal/core/domain"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, zerolog.Nop()), mr
}

func testSession(id string, userID int64) *domain.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Session{
		ID:           id,
		UserID:       userID,
		Role:         domain.RoleEmployee,
		IP:           "192.0.2.1",
		UserAgent:    "Mozilla/5.0 Chrome/120",
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(time.Hour),
	}
}

func TestSessionStore_SaveAndFind(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	session := testSession("s1", 7)
	if err := store.Save(ctx, session, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	found, err := store.Find(ctx, "s1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.UserID != 7 || found.IP != "192.0.2.1" {
		t.Fatalf("found = %+v", found)
	}
}

func TestSessionStore_FindMissing(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.Find(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestSessionStore_TTLExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testSession("s1", 7), time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Find(ctx, "s1"); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid after TTL, got %v", err)
	}
}

func TestSessionStore_Touch(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testSession("s1", 7), time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := store.Touch(ctx, "s1", time.Hour); err != nil {
		t.Fatalf("touch: %v", err)
	}

	// The old one-minute TTL would have killed the record by now.
	mr.FastForward(30 * time.Minute)

	found, err := store.Find(ctx, "s1")
	if err != nil {
		t.Fatalf("find after touch: %v", err)
	}
	if !found.LastActivity.After(found.CreatedAt) {
		t.Fatalf("last activity not updated: %+v", found)
	}
}

func TestSessionStore_Revoke(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testSession("s1", 7), time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Revoke(ctx, "s1", domain.RevokeLogout); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := store.Find(ctx, "s1"); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid after revoke, got %v", err)
	}

	// Revoking an already-gone session is a no-op, not an error.
	if err := store.Revoke(ctx, "s1", domain.RevokeLogout); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
}

func TestSessionStore_RevokeAllForUser(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Save(ctx, testSession(id, 7), time.Hour); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	if err := store.Save(ctx, testSession("other", 8), time.Hour); err != nil {
		t.Fatalf("save other: %v", err)
	}

	count, err := store.RevokeAllForUser(ctx, 7, domain.RevokeLogoutAll)
	if err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	if count != 3 {
		t.Fatalf("revoked %d, want 3", count)
	}

	// The other user's session survives.
	if _, err := store.Find(ctx, "other"); err != nil {
		t.Fatalf("unrelated session lost: %v", err)
	}
}

func TestSessionStore_ListForUserPrunesExpired(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testSession("short", 7), time.Minute); err != nil {
		t.Fatalf("save short: %v", err)
	}
	if err := store.Save(ctx, testSession("long", 7), time.Hour); err != nil {
		t.Fatalf("save long: %v", err)
	}

	mr.FastForward(5 * time.Minute)

	sessions, err := store.ListForUser(ctx, 7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "long" {
		t.Fatalf("sessions = %+v", sessions)
	}
}
