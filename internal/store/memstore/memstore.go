// Package memstore keeps counter state in process memory. It backs local
// development, the embedded daemon mode, and tests; the mutex gives the same
// per-key atomicity the Redis store gets from transactions.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"vectorgate/internal/store"
	"vectorgate/internal/strategy"
)

// Clock provides the current time for TTL bookkeeping.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type entry struct {
	state     strategy.CounterState
	expiresAt time.Time
}

// Store is an in-memory counter store.
type Store struct {
	mu      sync.Mutex
	clock   Clock
	entries map[string]entry
}

// New creates a Store with the provided clock. A nil clock means wall time.
func New(clock Clock) *Store {
	if clock == nil {
		clock = realClock{}
	}
	return &Store{
		clock:   clock,
		entries: map[string]entry{},
	}
}

// AtomicApply runs fn under the store lock and persists the returned state.
func (s *Store) AtomicApply(ctx context.Context, key string, ttl time.Duration, fn store.ApplyFunc) (strategy.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return strategy.Outcome{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	state := s.liveStateLocked(key, now)
	next, out := fn(state)
	s.entries[key] = entry{state: next, expiresAt: now.Add(ttl)}
	return out, nil
}

// Peek returns the current state without touching it.
func (s *Store) Peek(ctx context.Context, key string) (strategy.CounterState, bool, error) {
	if err := ctx.Err(); err != nil {
		return strategy.CounterState{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	e, ok := s.entries[key]
	if !ok || !e.expiresAt.After(now) {
		return strategy.CounterState{}, false, nil
	}
	return e.state, true, nil
}

// DeletePrefix removes all keys under prefix.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

// liveStateLocked returns the unexpired state for key, or a zero state.
func (s *Store) liveStateLocked(key string, now time.Time) strategy.CounterState {
	e, ok := s.entries[key]
	if !ok || !e.expiresAt.After(now) {
		return strategy.CounterState{}
	}
	return e.state
}
