package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Window is one fixed quota window. A window is replaced wholesale when its
// reset instant has passed and mutated (count incremented) otherwise.
type Window struct {
	Count   int
	ResetAt time.Time
}

// Store is the process-wide substrate shared by both limiters. State lives in
// memory only; it does not survive a restart and is not coordinated across
// instances.
type Store struct {
	mu      sync.Mutex
	entries map[string]Window
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]Window),
	}
}

// Get retrieves the stored window for a key.
func (s *Store) Get(key string) (Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.entries[key]
	return w, ok
}

// Set stores a window for a key, superseding any previous one.
func (s *Store) Set(key string, w Window) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = w
}

// Update runs fn under the store lock and writes the returned window back.
// The read-decide-write sequence of a limiter check must happen inside fn so
// concurrent requests for the same key serialize instead of both observing a
// stale count.
func (s *Store) Update(key string, fn func(cur Window, ok bool) Window) Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.entries[key]
	next := fn(cur, ok)
	s.entries[key] = next
	return next
}

// Len reports the number of stored windows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes windows whose reset instant is more than grace in the past
// and returns how many were removed. The baseline contract never evicts;
// sweeping is opt-in hardening for long-lived processes.
func (s *Store) Sweep(now time.Time, grace time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, w := range s.entries {
		if now.Sub(w.ResetAt) > grace {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps stale windows on a fixed interval until ctx is done.
func (s *Store) StartJanitor(ctx context.Context, interval, grace time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.Sweep(now, grace)
			}
		}
	}()
}
