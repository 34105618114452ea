// Package plan keeps the tier picked on the pricing page until checkout reads it.
package plan

import (
	"sync"

	"dashboard/internal/domain"
)

// Store holds at most one selected tier.
type Store struct {
	mu   sync.RWMutex
	tier domain.PlanTier
}

// NewStore returns an empty selection.
func NewStore() *Store {
	return &Store{}
}

// Select records tier after checking it against the catalog.
func (s *Store) Select(tier domain.PlanTier) error {
	if _, ok := domain.LookupPlan(tier); !ok {
		return domain.ErrUnknownPlan
	}
	s.mu.Lock()
	s.tier = tier
	s.mu.Unlock()
	return nil
}

// Selected returns the chosen plan, if any.
func (s *Store) Selected() (domain.Plan, bool) {
	s.mu.RLock()
	tier := s.tier
	s.mu.RUnlock()
	if tier == "" {
		return domain.Plan{}, false
	}
	return domain.LookupPlan(tier)
}

// Clear forgets the selection.
func (s *Store) Clear() {
	s.mu.Lock()
	s.tier = ""
	s.mu.Unlock()
}
