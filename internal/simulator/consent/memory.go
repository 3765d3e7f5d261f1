package consent

import (
	"context"
	"sync"
)

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

// GetConsent returns the state of clientID, Unset when missing.
func (s *MemoryStore) GetConsent(_ context.Context, clientID string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[clientID], nil
}

// PutConsent stores state for clientID.
func (s *MemoryStore) PutConsent(_ context.Context, clientID string, state State) error {
	s.mu.Lock()
	s.states[clientID] = state
	s.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
