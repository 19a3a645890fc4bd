// Package redisstore backs the counter store with Redis. Atomicity comes
// from optimistic WATCH/MULTI/EXEC transactions: the strategy evaluation runs
// client-side between WATCH and EXEC, and a concurrent writer to the same key
// aborts the EXEC, so read-evaluate-write is never split across replicas.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vectorgate/internal/store"
	"vectorgate/internal/strategy"
)

// maxTxRetries bounds optimistic-lock retries on contended keys.
const maxTxRetries = 16

// scanBatch is the COUNT hint for SCAN during admin reset.
const scanBatch = 256

// Store is a Redis-backed counter store.
type Store struct {
	rdb redis.UniversalClient
}

// New wraps a Redis client. The caller owns the client lifecycle.
func New(rdb redis.UniversalClient) *Store {
	return &Store{rdb: rdb}
}

// AtomicApply evaluates fn inside an optimistic transaction on key and
// writes the replacement state with the given TTL, refreshed on every write.
func (s *Store) AtomicApply(ctx context.Context, key string, ttl time.Duration, fn store.ApplyFunc) (strategy.Outcome, error) {
	var out strategy.Outcome
	apply := func(tx *redis.Tx) error {
		state, err := readState(ctx, tx, key)
		if err != nil {
			return err
		}
		next, o := fn(state)
		payload, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		if err != nil {
			return err
		}
		out = o
		return nil
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.rdb.Watch(ctx, apply, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return strategy.Outcome{}, err
	}
	return strategy.Outcome{}, fmt.Errorf("atomic apply on %s: retries exhausted", key)
}

// Peek reads the current state without mutating it.
func (s *Store) Peek(ctx context.Context, key string) (strategy.CounterState, bool, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return strategy.CounterState{}, false, nil
	}
	if err != nil {
		return strategy.CounterState{}, false, err
	}
	var state strategy.CounterState
	if err := json.Unmarshal(raw, &state); err != nil {
		return strategy.CounterState{}, false, fmt.Errorf("decode counter state %s: %w", key, err)
	}
	return state, true, nil
}

// DeletePrefix scans and deletes every key under prefix.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	deleted := 0
	iter := s.rdb.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.rdb.Del(ctx, batch...).Result()
		deleted += int(n)
		batch = batch[:0]
		return err
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= scanBatch {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	if err := flush(); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// readState loads and decodes the state under WATCH. An absent key seeds a
// zero-value state; a corrupt value is an error rather than a silent reset.
func readState(ctx context.Context, tx *redis.Tx, key string) (strategy.CounterState, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return strategy.CounterState{}, nil
	}
	if err != nil {
		return strategy.CounterState{}, err
	}
	var state strategy.CounterState
	if err := json.Unmarshal(raw, &state); err != nil {
		return strategy.CounterState{}, fmt.Errorf("decode counter state %s: %w", key, err)
	}
	return state, nil
}
