package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/cypress-simulator/internal/simulator/consent"
	"github.com/louisbranch/cypress-simulator/internal/simulator/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "simulator.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "simulator.db")
	for i := 0; i < 2; i++ {
		store, err := Open(context.Background(), path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close #%d: %v", i+1, err)
		}
	}
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	want := session.Session{ID: "sess-1", ClientID: "client-1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	if err := store.PutSession(ctx, want); err != nil {
		t.Fatalf("put session: %v", err)
	}
	got, ok, err := store.GetSession(ctx, "client-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !ok {
		t.Fatal("expected session")
	}
	if got != want {
		t.Fatalf("session = %+v, want %+v", got, want)
	}

	replacement := want
	replacement.ID = "sess-2"
	if err := store.PutSession(ctx, replacement); err != nil {
		t.Fatalf("replace session: %v", err)
	}
	got, _, _ = store.GetSession(ctx, "client-1")
	if got.ID != "sess-2" {
		t.Fatalf("session id = %q, want replacement", got.ID)
	}

	if err := store.DeleteSession(ctx, "client-1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, err := store.GetSession(ctx, "client-1"); err != nil || ok {
		t.Fatalf("get after delete = (%v, %v), want missing", ok, err)
	}
}

func TestPutSessionValidates(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	if err := store.PutSession(ctx, session.Session{ID: "s"}); err == nil {
		t.Fatal("expected error for missing client id")
	}
	if err := store.PutSession(ctx, session.Session{ClientID: "c"}); err == nil {
		t.Fatal("expected error for missing session id")
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := []session.Session{
		{ID: "live", ClientID: "c1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
		{ID: "stale", ClientID: "c2", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
	}
	for _, sess := range sessions {
		if err := store.PutSession(ctx, sess); err != nil {
			t.Fatalf("put session: %v", err)
		}
	}

	removed, err := store.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, ok, _ := store.GetSession(ctx, "c1"); !ok {
		t.Fatal("live session must survive")
	}
}

func TestConsentRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	state, err := store.GetConsent(ctx, "client-1")
	if err != nil {
		t.Fatalf("get consent: %v", err)
	}
	if state != consent.Unset {
		t.Fatalf("consent = %q, want unset", state)
	}

	for _, want := range []consent.State{consent.Accepted, consent.Declined} {
		if err := store.PutConsent(ctx, "client-1", want); err != nil {
			t.Fatalf("put consent: %v", err)
		}
		got, err := store.GetConsent(ctx, "client-1")
		if err != nil {
			t.Fatalf("get consent: %v", err)
		}
		if got != want {
			t.Fatalf("consent = %q, want %q", got, want)
		}
	}

	if err := store.PutConsent(ctx, "client-1", consent.Unset); err == nil {
		t.Fatal("expected error storing unset consent")
	}
	if other, _ := store.GetConsent(ctx, "client-2"); other != consent.Unset {
		t.Fatalf("consent leaked across clients: %q", other)
	}
}

func TestConsentSurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "simulator.db")
	ctx := context.Background()

	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.PutConsent(ctx, "client-1", consent.Accepted); err != nil {
		t.Fatalf("put consent: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if state, _ := reopened.GetConsent(ctx, "client-1"); state != consent.Accepted {
		t.Fatalf("consent = %q, want accepted after reopen", state)
	}
}

func TestNilStoreIsNotConfigured(t *testing.T) {
	t.Parallel()

	var store *Store
	if err := store.PutSession(context.Background(), session.Session{}); err == nil {
		t.Fatal("expected error from nil store")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}
