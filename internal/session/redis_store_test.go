package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), ttl)
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

func TestSaveAndLookupSession(t *testing.T) {
	store, s := setupTestRedis(t, time.Hour)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	data := Data{UserID: 42, Email: "avery@example.com", CreatedAt: time.Now()}

	if err := store.Save(ctx, "sid-1", data); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Lookup(ctx, "sid-1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got.UserID != 42 {
		t.Errorf("expected user id 42, got %d", got.UserID)
	}
	if got.Email != "avery@example.com" {
		t.Errorf("expected email avery@example.com, got %s", got.Email)
	}
}

func TestLookupExpiredSession(t *testing.T) {
	store, s := setupTestRedis(t, time.Millisecond)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if err := store.Save(ctx, "sid-expiring", Data{UserID: 7}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	s.FastForward(2 * time.Millisecond)

	if _, err := store.Lookup(ctx, "sid-expiring"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for expired session, got %v", err)
	}
}

func TestLookupUnknownSession(t *testing.T) {
	store, s := setupTestRedis(t, time.Hour)
	defer store.Close()
	defer s.Close()

	if _, err := store.Lookup(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	store, s := setupTestRedis(t, time.Hour)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if err := store.Save(ctx, "sid-2", Data{UserID: 9}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(ctx, "sid-2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Lookup(ctx, "sid-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is a no-op.
	if err := store.Delete(ctx, "sid-2"); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
}

func TestOAuthStateIsConsumedOnTake(t *testing.T) {
	store, s := setupTestRedis(t, time.Hour)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if err := store.SaveOAuthState(ctx, "state-abc", "verifier-xyz"); err != nil {
		t.Fatalf("SaveOAuthState failed: %v", err)
	}

	verifier, err := store.TakeOAuthState(ctx, "state-abc")
	if err != nil {
		t.Fatalf("TakeOAuthState failed: %v", err)
	}
	if verifier != "verifier-xyz" {
		t.Errorf("expected verifier-xyz, got %s", verifier)
	}

	if _, err := store.TakeOAuthState(ctx, "state-abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on replayed state, got %v", err)
	}
}

func TestOAuthStateExpires(t *testing.T) {
	store, s := setupTestRedis(t, time.Hour)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if err := store.SaveOAuthState(ctx, "state-old", "v"); err != nil {
		t.Fatalf("SaveOAuthState failed: %v", err)
	}

	s.FastForward(11 * time.Minute)

	if _, err := store.TakeOAuthState(ctx, "state-old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for expired state, got %v", err)
	}
}
