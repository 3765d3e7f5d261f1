// Package storage defines the durable state of the simulator: sessions and
// consent choices, both keyed by browser context.
package storage

import (
	"context"
	"time"

	"github.com/louisbranch/cypress-simulator/internal/simulator/consent"
	"github.com/louisbranch/cypress-simulator/internal/simulator/session"
)

// Store persists sessions and consent.
type Store interface {
	session.Store
	consent.Store
	// DeleteExpiredSessions removes sessions that expired before now and
	// returns how many were removed.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	Close() error
}

// Memory keeps all state in process memory. It is used when no database
// path is configured.
type Memory struct {
	sessions *session.MemoryStore
	consents *consent.MemoryStore
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions: session.NewMemoryStore(),
		consents: consent.NewMemoryStore(),
	}
}

// PutSession implements session.Store.
func (m *Memory) PutSession(ctx context.Context, sess session.Session) error {
	return m.sessions.PutSession(ctx, sess)
}

// GetSession implements session.Store.
func (m *Memory) GetSession(ctx context.Context, clientID string) (session.Session, bool, error) {
	return m.sessions.GetSession(ctx, clientID)
}

// DeleteSession implements session.Store.
func (m *Memory) DeleteSession(ctx context.Context, clientID string) error {
	return m.sessions.DeleteSession(ctx, clientID)
}

// DeleteExpiredSessions implements Store.
func (m *Memory) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	return m.sessions.DeleteExpired(now), nil
}

// GetConsent implements consent.Store.
func (m *Memory) GetConsent(ctx context.Context, clientID string) (consent.State, error) {
	return m.consents.GetConsent(ctx, clientID)
}

// PutConsent implements consent.Store.
func (m *Memory) PutConsent(ctx context.Context, clientID string, state consent.State) error {
	return m.consents.PutConsent(ctx, clientID, state)
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

var _ Store = (*Memory)(nil)
