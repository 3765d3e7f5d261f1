package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// PutSession stores session, replacing any session of the same client.
func (s *MemoryStore) PutSession(_ context.Context, session Session) error {
	s.mu.Lock()
	s.sessions[session.ClientID] = session
	s.mu.Unlock()
	return nil
}

// GetSession returns the session of clientID.
func (s *MemoryStore) GetSession(_ context.Context, clientID string) (Session, bool, error) {
	s.mu.RLock()
	sess, ok := s.sessions[clientID]
	s.mu.RUnlock()
	return sess, ok, nil
}

// DeleteSession removes the session of clientID.
func (s *MemoryStore) DeleteSession(_ context.Context, clientID string) error {
	s.mu.Lock()
	delete(s.sessions, clientID)
	s.mu.Unlock()
	return nil
}

// DeleteExpired removes sessions that expired at or before now.
func (s *MemoryStore) DeleteExpired(now time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for clientID, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, clientID)
			removed++
		}
	}
	return removed
}

var _ Store = (*MemoryStore)(nil)
