package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/cypress-simulator/internal/platform/errors"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestManager(t *testing.T, store Store, clock *fakeClock) *Manager {
	t.Helper()
	manager, err := NewManager(store, Config{Secret: testSecret, TTL: time.Hour, Now: clock.Now})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

func TestNewManagerValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewManager(nil, Config{Secret: testSecret}); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewManager(NewMemoryStore(), Config{Secret: []byte("short")}); err == nil {
		t.Fatal("expected error for short secret")
	}
	manager, err := NewManager(NewMemoryStore(), Config{Secret: testSecret})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if manager.ttl != DefaultTTL {
		t.Fatalf("ttl = %v, want %v", manager.ttl, DefaultTTL)
	}
}

func TestLoginThenAuthenticate(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	manager := newTestManager(t, NewMemoryStore(), clock)
	ctx := context.Background()

	created, token, err := manager.Login(ctx, "client-1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if created.ClientID != "client-1" || created.ID == "" {
		t.Fatalf("unexpected session %+v", created)
	}
	if !created.ExpiresAt.Equal(clock.now.Add(time.Hour)) {
		t.Fatalf("expires at = %v", created.ExpiresAt)
	}

	got, ok, err := manager.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !ok {
		t.Fatal("expected token to authenticate")
	}
	if got != created {
		t.Fatalf("session = %+v, want %+v", got, created)
	}
}

func TestLoginRequiresClientID(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, NewMemoryStore(), &fakeClock{now: time.Now()})
	_, _, err := manager.Login(context.Background(), "  ")
	if apperrors.CodeOf(err) != apperrors.CodeInvalidRequest {
		t.Fatalf("code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeInvalidRequest)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, NewMemoryStore(), &fakeClock{now: time.Now()})
	ctx := context.Background()
	_, token, err := manager.Login(ctx, "client-1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := manager.Logout(ctx, "client-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok, _ := manager.Authenticate(ctx, token); ok {
		t.Fatal("token must not authenticate after logout")
	}
	if err := manager.Logout(ctx, "client-1"); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

func TestReloginSupersedesPreviousToken(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, NewMemoryStore(), &fakeClock{now: time.Now()})
	ctx := context.Background()
	_, first, err := manager.Login(ctx, "client-1")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	_, second, err := manager.Login(ctx, "client-1")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if _, ok, _ := manager.Authenticate(ctx, first); ok {
		t.Fatal("superseded token must not authenticate")
	}
	if _, ok, _ := manager.Authenticate(ctx, second); !ok {
		t.Fatal("latest token must authenticate")
	}
}

func TestSessionsAreScopedPerClient(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, NewMemoryStore(), &fakeClock{now: time.Now()})
	ctx := context.Background()
	_, tokenA, _ := manager.Login(ctx, "client-a")
	_, tokenB, _ := manager.Login(ctx, "client-b")

	if err := manager.Logout(ctx, "client-a"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok, _ := manager.Authenticate(ctx, tokenA); ok {
		t.Fatal("client-a token must be revoked")
	}
	if _, ok, _ := manager.Authenticate(ctx, tokenB); !ok {
		t.Fatal("client-b token must survive client-a logout")
	}
}

func TestAuthenticateExpiredSession(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	store := NewMemoryStore()
	manager := newTestManager(t, store, clock)
	ctx := context.Background()
	_, token, err := manager.Login(ctx, "client-1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	clock.now = clock.now.Add(2 * time.Hour)
	if _, ok, err := manager.Authenticate(ctx, token); ok || err != nil {
		t.Fatalf("authenticate = (%v, %v), want (false, nil)", ok, err)
	}
	if _, err := manager.Verify(token); apperrors.CodeOf(err) != apperrors.CodeSessionExpired {
		t.Fatalf("verify code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeSessionExpired)
	}
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Now()}
	manager := newTestManager(t, NewMemoryStore(), clock)

	other, err := NewManager(NewMemoryStore(), Config{Secret: []byte(strings.Repeat("z", 32)), Now: clock.Now})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	_, foreign, err := other.Login(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "client-1",
		ID:        "session-1",
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	tests := []struct {
		name  string
		token string
		code  apperrors.Code
	}{
		{name: "empty", token: "", code: apperrors.CodeUnauthenticated},
		{name: "garbage", token: "not-a-token", code: apperrors.CodeSessionInvalid},
		{name: "other secret", token: foreign, code: apperrors.CodeSessionInvalid},
		{name: "alg none", token: unsigned, code: apperrors.CodeSessionInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := manager.Verify(tc.token)
			if apperrors.CodeOf(err) != tc.code {
				t.Fatalf("code = %q, want %q (err %v)", apperrors.CodeOf(err), tc.code, err)
			}
		})
	}
}

type failingStore struct {
	*MemoryStore
}

func (failingStore) GetSession(context.Context, string) (Session, bool, error) {
	return Session{}, false, errors.New("disk gone")
}

func TestAuthenticateSurfacesStorageErrors(t *testing.T) {
	t.Parallel()

	store := failingStore{MemoryStore: NewMemoryStore()}
	manager := newTestManager(t, store, &fakeClock{now: time.Now()})
	ctx := context.Background()
	_, token, err := manager.Login(ctx, "client-1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, _, err = manager.Authenticate(ctx, token)
	if apperrors.CodeOf(err) != apperrors.CodeStorageUnavailable {
		t.Fatalf("code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeStorageUnavailable)
	}
}

func TestGenerateSecret(t *testing.T) {
	t.Parallel()

	first, err := GenerateSecret()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := GenerateSecret()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(first) < MinSecretLength || string(first) == string(second) {
		t.Fatal("expected distinct secrets of sufficient length")
	}
}
