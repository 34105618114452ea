// Package credits tracks the advisory credit balance a tool view shows.
//
// The backend owns the real ledger. A Meter refreshes from the profile
// endpoint when a view mounts and decrements locally after each successful
// tool call. With reconciliation enabled it also re-reads the profile after
// every debit and adopts the server's number.
package credits

import (
	"context"
	"sync"

	"dashboard/internal/domain"
	"dashboard/internal/infra"
	"dashboard/internal/session"
)

// ProfileFetcher loads the current profile from the backend.
type ProfileFetcher interface {
	Profile(ctx context.Context) (*domain.Profile, error)
}

// SessionReader exposes the current session snapshot.
type SessionReader interface {
	Snapshot() session.Snapshot
}

// Options configures a Meter.
type Options struct {
	Reconcile bool
	Logger    *infra.Logger
}

// Meter is the credit-aware session consumer shared by all tool views.
type Meter struct {
	session   SessionReader
	profiles  ProfileFetcher
	reconcile bool
	logger    *infra.Logger

	mu      sync.RWMutex
	balance int
	used    int
	loaded  bool
}

// NewMeter returns a meter showing zero credits.
func NewMeter(sess SessionReader, profiles ProfileFetcher, opts Options) *Meter {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Meter{
		session:   sess,
		profiles:  profiles,
		reconcile: opts.Reconcile,
		logger:    logger,
	}
}

// Mount refreshes the balance when the session is authenticated. Failures
// are logged and leave the last known balance in place.
func (m *Meter) Mount(ctx context.Context) {
	if !m.session.Snapshot().Authenticated() {
		return
	}
	m.refresh(ctx)
}

// Balance returns the locally known remaining credits.
func (m *Meter) Balance() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balance
}

// Used returns the locally known count of spent credits.
func (m *Meter) Used() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.used
}

// Loaded reports whether a profile fetch has succeeded at least once.
func (m *Meter) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// CanSpend reports whether a submit may go ahead.
func (m *Meter) CanSpend() bool {
	return m.Balance() > 0
}

// Debit records one successful tool call.
func (m *Meter) Debit(ctx context.Context) {
	m.mu.Lock()
	if m.balance > 0 {
		m.balance--
	}
	m.used++
	m.mu.Unlock()
	if m.reconcile {
		m.refresh(ctx)
	}
}

func (m *Meter) refresh(ctx context.Context) {
	p, err := m.profiles.Profile(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to fetch profile")
		return
	}
	m.Set(p.Credits, p.CreditsUsed)
}

// Set overwrites the balance with server values.
func (m *Meter) Set(balance, used int) {
	if balance < 0 {
		balance = 0
	}
	m.mu.Lock()
	m.balance = balance
	m.used = used
	m.loaded = true
	m.mu.Unlock()
}
