package page

import (
	"context"
	"sync"
	"time"

	"github.com/louisbranch/cypress-simulator/internal/platform/timeouts"
)

// DefaultIdleTTL is how long an untouched page is kept in memory.
const DefaultIdleTTL = 30 * time.Minute

// Registry keeps one Page per browser context.
type Registry struct {
	cfg     *Config
	idleTTL time.Duration

	mu    sync.Mutex
	pages map[string]*Page
}

// NewRegistry validates cfg and returns an empty registry. idleTTL <= 0 uses
// DefaultIdleTTL.
func NewRegistry(cfg Config, idleTTL time.Duration) (*Registry, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Registry{
		cfg:     &cfg,
		idleTTL: idleTTL,
		pages:   make(map[string]*Page),
	}, nil
}

// Get returns the page of clientID, creating it on first use.
func (r *Registry) Get(clientID string) (*Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pages[clientID]; ok {
		// Marked seen under the registry lock so Prune cannot drop a page
		// a caller is about to use.
		p.markSeen()
		return p, nil
	}
	p, err := newPage(clientID, r.cfg)
	if err != nil {
		return nil, err
	}
	r.pages[p.clientID] = p
	return p, nil
}

// Len returns the number of live pages.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// Prune drops pages idle for longer than the TTL that have no run in flight
// and returns how many were removed. Sessions and consent are persisted
// elsewhere, so a pruned context resumes from a fresh page.
func (r *Registry) Prune() int {
	cutoff := r.cfg.Now().Add(-r.idleTTL)

	r.mu.Lock()
	var stale []*Page
	for id, p := range r.pages {
		if p.Busy() || p.LastSeen().After(cutoff) {
			continue
		}
		delete(r.pages, id)
		stale = append(stale, p)
	}
	r.mu.Unlock()

	for _, p := range stale {
		p.Close()
	}
	return len(stale)
}

// RunPruner prunes on timeouts.PagePruneInterval until ctx is done.
func (r *Registry) RunPruner(ctx context.Context) {
	r.runPruner(ctx, timeouts.PagePruneInterval)
}

func (r *Registry) runPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Prune()
		}
	}
}

// Close stops every page's pending timers.
func (r *Registry) Close() {
	r.mu.Lock()
	pages := r.pages
	r.pages = make(map[string]*Page)
	r.mu.Unlock()
	for _, p := range pages {
		p.Close()
	}
}
