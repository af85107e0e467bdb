package conversation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps conversation state in process memory. Entries idle for
// longer than the TTL are treated as abandoned.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[Key]*State
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore. A zero ttl disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[Key]*State),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) expired(st *State, now time.Time) bool {
	return s.ttl > 0 && now.Sub(st.UpdatedAt) > s.ttl
}

// Get returns a copy of the state at key.
func (s *MemoryStore) Get(_ context.Context, key Key) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if s.expired(st, s.now()) {
		delete(s.entries, key)
		return nil, nil
	}
	return st.clone(), nil
}

// Put stores a copy of state at key.
func (s *MemoryStore) Put(_ context.Context, key Key, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = state.clone()
	return nil
}

// Delete removes the state at key.
func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Sweep drops abandoned entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, st := range s.entries {
		if s.expired(st, now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
