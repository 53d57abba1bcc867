package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Counter is the state of one key's current window.
type Counter struct {
	Count   int
	ResetAt time.Time
}

// Store increments the counter for key, starting a new window of the given
// length when none is active. Increment must be atomic per key.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (Counter, error)
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu           sync.Mutex
	entries      map[string]*Counter
	now          func() time.Time
	cleanupEvery time.Duration
}

type MemoryOption func(*MemoryStore)

func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func WithCleanupEvery(d time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.cleanupEvery = d }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries:      make(map[string]*Counter),
		now:          time.Now,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (Counter, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || !now.Before(ent.ResetAt) {
		ent = &Counter{ResetAt: now.Add(window)}
		s.entries[key] = ent
	}
	ent.Count++
	return *ent, nil
}

// Len reports how many keys are tracked.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup evicts counters whose window has ended.
func (s *MemoryStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if !now.Before(ent.ResetAt) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor runs Cleanup periodically until ctx is done.
func (s *MemoryStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
