package authz

import (
	"context"
	"sync"
)

// Store is an in-memory CapabilityStore + AdminState, used for wiring and
// tests. A production deployment would point the Gate at the real role
// service instead.
type Store struct {
	mu      sync.RWMutex
	caps    map[string]map[Capability]struct{}
	paused  bool
	blocked map[string]bool
	members map[string]bool
}

func NewStore() *Store {
	return &Store{
		caps:    make(map[string]map[Capability]struct{}),
		blocked: make(map[string]bool),
		members: make(map[string]bool),
	}
}

func (s *Store) Has(_ context.Context, principal string, c Capability) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.caps[principal][c]
	return ok, nil
}

func (s *Store) Grant(_ context.Context, c Capability, principal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.caps[principal] == nil {
		s.caps[principal] = make(map[Capability]struct{})
	}
	s.caps[principal][c] = struct{}{}
	return nil
}

func (s *Store) Revoke(_ context.Context, c Capability, principal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.caps[principal], c)
	return nil
}

func (s *Store) IsPaused(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused, nil
}

func (s *Store) IsBlocked(_ context.Context, principal string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blocked[principal], nil
}

func (s *Store) IsRegistered(_ context.Context, principal string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members[principal], nil
}

// ---- administrative flag flips (guarded upstream, single switches here) ----

func (s *Store) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

func (s *Store) SetBlocked(principal string, blocked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked[principal] = blocked
}

func (s *Store) SetRegistered(principal string, registered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[principal] = registered
}
