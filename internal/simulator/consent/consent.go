// Package consent records a browser context's cookie-consent choice.
package consent

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/louisbranch/cypress-simulator/internal/platform/errors"
)

// StorageKey names the persisted consent value, both in the store and in the
// pre-seeding cookie.
const StorageKey = "cookieConsent"

// State is the consent choice. The zero value is Unset.
type State string

const (
	Unset    State = ""
	Accepted State = "accepted"
	Declined State = "declined"
)

// ParseState accepts the persisted spellings of a decided state.
func ParseState(value string) (State, bool) {
	switch State(strings.ToLower(strings.TrimSpace(value))) {
	case Accepted:
		return Accepted, true
	case Declined:
		return Declined, true
	default:
		return Unset, false
	}
}

// Decided reports whether the user already answered the banner.
func (s State) Decided() bool {
	return s == Accepted || s == Declined
}

// BannerVisible reports whether the consent banner shows. It never shows on
// the login view.
func BannerVisible(state State, authenticated bool) bool {
	return authenticated && !state.Decided()
}

// Store persists consent keyed by client ID. A missing row reads as Unset.
type Store interface {
	GetConsent(ctx context.Context, clientID string) (State, error)
	PutConsent(ctx context.Context, clientID string, state State) error
}

// Manager reads and records consent. Consent outlives sessions.
type Manager struct {
	store Store
}

// NewManager returns a manager backed by store.
func NewManager(store Store) (*Manager, error) {
	if store == nil {
		return nil, errors.New("consent store is required")
	}
	return &Manager{store: store}, nil
}

// Get returns the recorded state of clientID.
func (m *Manager) Get(ctx context.Context, clientID string) (State, error) {
	state, err := m.store.GetConsent(ctx, clientID)
	if err != nil {
		return Unset, apperrors.Wrap(apperrors.CodeStorageUnavailable, "get consent", err)
	}
	return state, nil
}

// Accept records acceptance.
func (m *Manager) Accept(ctx context.Context, clientID string) error {
	return m.Record(ctx, clientID, Accepted)
}

// Decline records refusal.
func (m *Manager) Decline(ctx context.Context, clientID string) error {
	return m.Record(ctx, clientID, Declined)
}

// Record stores a decided state. Recording Unset is rejected; consent cannot
// be withdrawn back to the banner.
func (m *Manager) Record(ctx context.Context, clientID string, state State) error {
	if !state.Decided() {
		return apperrors.WithMetadata(
			apperrors.CodeConsentInvalidState,
			"consent state must be accepted or declined",
			map[string]string{"State": string(state)},
		)
	}
	if strings.TrimSpace(clientID) == "" {
		return apperrors.New(apperrors.CodeInvalidRequest, "client id is required")
	}
	if err := m.store.PutConsent(ctx, clientID, state); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "put consent", err)
	}
	return nil
}

// Seed applies a pre-seeded value (the cookieConsent cookie) when nothing is
// recorded yet, and returns the effective state. Unknown values are ignored.
func (m *Manager) Seed(ctx context.Context, clientID, raw string) (State, error) {
	current, err := m.Get(ctx, clientID)
	if err != nil {
		return Unset, err
	}
	if current.Decided() {
		return current, nil
	}
	seeded, ok := ParseState(raw)
	if !ok {
		return current, nil
	}
	if err := m.Record(ctx, clientID, seeded); err != nil {
		return Unset, err
	}
	return seeded, nil
}
