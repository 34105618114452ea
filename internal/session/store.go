// Package session holds the authentication state of one workspace.
//
// State is published as immutable Snapshot values. Readers either take the
// current snapshot or subscribe to a channel of updates; only the store's own
// operations mutate it.
package session

import (
	"context"
	"sync"
	"time"

	"dashboard/internal/infra"
)

// Status is the resolved authentication state.
type Status int

const (
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time view of the session.
type Snapshot struct {
	Status    Status
	Version   uint64
	ChangedAt time.Time
}

// Resolved reports whether the startup session check has completed.
func (s Snapshot) Resolved() bool { return s.Status != StatusUnknown }

// Authenticated reports whether the user is signed in.
func (s Snapshot) Authenticated() bool { return s.Status == StatusAuthenticated }

// Backend is the subset of the backend client the store needs.
type Backend interface {
	CheckSession(ctx context.Context) error
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, username, email, password string) error
	Logout(ctx context.Context) error
}

// Store owns the authentication flag.
type Store struct {
	backend Backend
	logger  *infra.Logger
	now     func() time.Time

	checkOnce sync.Once

	mu     sync.Mutex
	snap   Snapshot
	subs   map[int]chan Snapshot
	nextID int
	closed bool
}

// NewStore creates a store in the unknown state.
func NewStore(backend Backend, logger *infra.Logger) *Store {
	if logger == nil {
		logger = infra.NopLogger()
	}
	s := &Store{
		backend: backend,
		logger:  logger,
		now:     time.Now,
		subs:    make(map[int]chan Snapshot),
	}
	s.snap.ChangedAt = s.now()
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Check queries the backend once per store. Any failure resolves to
// unauthenticated and is never surfaced. Later calls return the current state
// without touching the network; concurrent callers wait for the first to finish.
func (s *Store) Check(ctx context.Context) Snapshot {
	s.checkOnce.Do(func() {
		status := StatusAuthenticated
		if err := s.backend.CheckSession(ctx); err != nil {
			s.logger.Debug().Err(err).Msg("session check failed")
			status = StatusUnauthenticated
		}
		s.resolve(status)
	})
	return s.Snapshot()
}

// Login exchanges credentials with the backend and marks the session
// authenticated on success. A failed login leaves the state untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if err := s.backend.Login(ctx, email, password); err != nil {
		return err
	}
	s.MarkAuthenticated()
	return nil
}

// Register creates an account without signing in.
func (s *Store) Register(ctx context.Context, username, email, password string) error {
	return s.backend.Register(ctx, username, email, password)
}

// MarkAuthenticated flips the session to authenticated.
func (s *Store) MarkAuthenticated() {
	s.set(StatusAuthenticated)
}

// Logout asks the backend to drop the session and then clears local state no
// matter what the backend said. The backend error is returned for logging only.
func (s *Store) Logout(ctx context.Context) error {
	err := s.backend.Logout(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("backend logout failed; clearing local session anyway")
	}
	s.set(StatusUnauthenticated)
	return err
}

// Expire records that an authenticated request was rejected by the backend.
func (s *Store) Expire() {
	s.set(StatusUnauthenticated)
}

// Subscribe returns a channel that receives the latest snapshot after every
// change, starting with the current one. Slow readers only ever see the most
// recent value. The returned func unsubscribes.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.snap
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Close ends all subscriptions.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

// resolve applies the startup check result unless a login or logout already
// decided the state.
func (s *Store) resolve(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Status != StatusUnknown {
		return
	}
	s.publishLocked(status)
}

func (s *Store) set(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Status == status {
		return
	}
	s.publishLocked(status)
}

func (s *Store) publishLocked(status Status) {
	s.snap = Snapshot{Status: status, Version: s.snap.Version + 1, ChangedAt: s.now()}
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.snap
	}
}
