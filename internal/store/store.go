// Package store defines the shared counter store abstraction. The store is
// the single source of truth for quota state: counter snapshots are never
// cached in-process.
package store

import (
	"context"
	"time"

	"vectorgate/internal/strategy"
)

// ApplyFunc evaluates a counter snapshot and returns the replacement state
// together with the decision it produced.
type ApplyFunc func(state strategy.CounterState) (strategy.CounterState, strategy.Outcome)

// Store is the atomic counter store. AtomicApply is the one primitive the
// strategy engine needs: read-evaluate-write as a single indivisible
// operation, so two replicas can never both admit against the last unit of
// remaining quota.
type Store interface {
	// AtomicApply runs fn against the current state for key and persists
	// the returned state with the given TTL. An absent key is seeded with a
	// zero-value state before fn runs.
	AtomicApply(ctx context.Context, key string, ttl time.Duration, fn ApplyFunc) (strategy.Outcome, error)
	// Peek reads the current state without mutating it. The second return
	// reports whether the key exists.
	Peek(ctx context.Context, key string) (strategy.CounterState, bool, error)
	// DeletePrefix removes every key under prefix and returns the count.
	// Admin reset is the only caller.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}
