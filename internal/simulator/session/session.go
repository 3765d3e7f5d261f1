// Package session owns the logged-in state of a browser context.
//
// A session is created by a successful captcha answer (or the captcha
// bypass), survives page reloads through a signed token, and is destroyed by
// logout. Each browser context holds at most one session; logging in again
// replaces the previous one.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/cypress-simulator/internal/platform/errors"
	"github.com/louisbranch/cypress-simulator/internal/platform/id"
)

const (
	// DefaultTTL is used when Config.TTL is not set.
	DefaultTTL = 30 * 24 * time.Hour

	// MinSecretLength is the shortest accepted signing secret.
	MinSecretLength = 32

	tokenIssuer = "cypress-simulator"
)

// Session is one authenticated login for a browser context.
type Session struct {
	ID        string
	ClientID  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Store persists sessions keyed by client ID.
type Store interface {
	PutSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, clientID string) (Session, bool, error)
	DeleteSession(ctx context.Context, clientID string) error
}

// Config controls token signing and session lifetime.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

// Manager creates, authenticates and destroys sessions.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// tokenClaims is the signed payload of a session token.
type tokenClaims struct {
	jwt.RegisteredClaims
}

// GenerateSecret returns a random signing secret for deployments that do not
// configure one. Tokens signed with it do not survive a restart.
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, MinSecretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	return secret, nil
}

// NewManager validates cfg and returns a manager backed by store.
func NewManager(store Store, cfg Config) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:  store,
		secret: append([]byte(nil), cfg.Secret...),
		ttl:    ttl,
		now:    now,
	}, nil
}

// Login creates a session for clientID, replacing any existing one, and
// returns it with its signed token.
func (m *Manager) Login(ctx context.Context, clientID string) (Session, string, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return Session{}, "", apperrors.New(apperrors.CodeInvalidRequest, "client id is required")
	}
	sessionID, err := id.NewID()
	if err != nil {
		return Session{}, "", fmt.Errorf("generate session id: %w", err)
	}
	now := m.now().UTC().Truncate(time.Second)
	sess := Session{
		ID:        sessionID,
		ClientID:  clientID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	token, err := m.sign(sess)
	if err != nil {
		return Session{}, "", err
	}
	if err := m.store.PutSession(ctx, sess); err != nil {
		return Session{}, "", apperrors.Wrap(apperrors.CodeStorageUnavailable, "put session", err)
	}
	return sess, token, nil
}

// Logout destroys the session of clientID. Logging out without a session is
// not an error.
func (m *Manager) Logout(ctx context.Context, clientID string) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil
	}
	if err := m.store.DeleteSession(ctx, clientID); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "delete session", err)
	}
	return nil
}

// Authenticate resolves token to its live session. Invalid, expired, revoked
// or superseded tokens report false with a nil error; only storage failures
// are returned as errors.
func (m *Manager) Authenticate(ctx context.Context, token string) (Session, bool, error) {
	claims, err := m.Verify(token)
	if err != nil {
		return Session{}, false, nil
	}
	stored, ok, err := m.store.GetSession(ctx, claims.ClientID)
	if err != nil {
		return Session{}, false, apperrors.Wrap(apperrors.CodeStorageUnavailable, "get session", err)
	}
	if !ok || stored.ID != claims.ID {
		return Session{}, false, nil
	}
	if stored.Expired(m.now()) {
		if err := m.store.DeleteSession(ctx, stored.ClientID); err != nil {
			return Session{}, false, apperrors.Wrap(apperrors.CodeStorageUnavailable, "delete expired session", err)
		}
		return Session{}, false, nil
	}
	return stored, true, nil
}

// Verify checks the token signature and expiry without consulting the store.
func (m *Manager) Verify(token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, apperrors.New(apperrors.CodeUnauthenticated, "session token is required")
	}
	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Session{}, mapJWTError(err)
	}
	if parsed.ID == "" || parsed.Subject == "" {
		return Session{}, apperrors.New(apperrors.CodeSessionInvalid, "session token is missing identity")
	}
	sess := Session{
		ID:        parsed.ID,
		ClientID:  parsed.Subject,
		ExpiresAt: parsed.ExpiresAt.Time.UTC(),
	}
	if parsed.IssuedAt != nil {
		sess.CreatedAt = parsed.IssuedAt.Time.UTC()
	}
	return sess, nil
}

func (m *Manager) sign(sess Session) (string, error) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   sess.ClientID,
			ID:        sess.ID,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return apperrors.Wrap(apperrors.CodeSessionExpired, "session token is expired", err)
	}
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return apperrors.Wrap(apperrors.CodeSessionInvalid, "session token signature is invalid", err)
	}
	return apperrors.Wrap(apperrors.CodeSessionInvalid, "session token is invalid", err)
}
