package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"dashboard/internal/metrics"
)

// Factory builds a workspace for a fresh id.
type Factory func(id string) (*Workspace, error)

// Registry maps browser ids to workspaces and evicts idle ones.
type Registry struct {
	factory Factory
	ttl     time.Duration
	limit   int
	now     func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

// NewRegistry returns an empty registry.
func NewRegistry(factory Factory, ttl time.Duration) *Registry {
	return &Registry{
		factory: factory,
		ttl:     ttl,
		now:     time.Now,
		items:   make(map[string]*Workspace),
	}
}

// SetLimit caps the number of live workspaces; 0 means unbounded. Creating a
// workspace past the cap evicts the least recently used one.
func (r *Registry) SetLimit(n int) {
	r.mu.Lock()
	r.limit = n
	r.mu.Unlock()
}

// Get returns the live workspace for id and marks it used.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[id]
	if !ok {
		return nil, false
	}
	w.Touch(r.now())
	return w, true
}

// Create builds and stores a workspace under a new random id.
func (r *Registry) Create() (*Workspace, error) {
	id := uuid.NewString()
	w, err := r.factory(id)
	if err != nil {
		return nil, err
	}
	w.Touch(r.now())
	var evicted []*Workspace
	r.mu.Lock()
	for r.limit > 0 && len(r.items) >= r.limit {
		oldest := r.oldestLocked()
		if oldest == nil {
			break
		}
		delete(r.items, oldest.ID)
		evicted = append(evicted, oldest)
	}
	r.items[id] = w
	n := len(r.items)
	r.mu.Unlock()
	for _, old := range evicted {
		old.Close()
	}
	metrics.SetWorkspaces(n)
	return w, nil
}

func (r *Registry) oldestLocked() *Workspace {
	var oldest *Workspace
	for _, w := range r.items {
		if oldest == nil || w.LastSeen().Before(oldest.LastSeen()) {
			oldest = w
		}
	}
	return oldest
}

// Remove drops id, closing its workspace.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	w, ok := r.items[id]
	delete(r.items, id)
	n := len(r.items)
	r.mu.Unlock()
	if ok {
		w.Close()
	}
	metrics.SetWorkspaces(n)
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Sweep evicts workspaces idle for longer than the ttl and returns how many went.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)
	var stale []*Workspace
	r.mu.Lock()
	for id, w := range r.items {
		if w.LastSeen().Before(cutoff) {
			stale = append(stale, w)
			delete(r.items, id)
		}
	}
	n := len(r.items)
	r.mu.Unlock()
	for _, w := range stale {
		w.Close()
	}
	metrics.SetWorkspaces(n)
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep()
		}
	}
}

// CloseAll closes every workspace.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*Workspace)
	r.mu.Unlock()
	for _, w := range items {
		w.Close()
	}
	metrics.SetWorkspaces(0)
}
