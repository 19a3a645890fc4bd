// Package admit orchestrates one admission decision per inbound request:
// resolve the quota plan, run each limit spec atomically against the counter
// store, and fold the outcomes into a single result.
package admit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"vectorgate/internal/quota"
	"vectorgate/internal/store"
	"vectorgate/internal/strategy"
	"vectorgate/pkg/admission"
)

// ttlGrace pads counter TTLs past the window so a counter never expires
// while it still influences a decision.
const ttlGrace = time.Minute

// DefaultStoreTimeout bounds one store round trip when the config omits it.
const DefaultStoreTimeout = 100 * time.Millisecond

// Config wires a Controller.
type Config struct {
	Store    store.Store
	Resolver *quota.Resolver
	Fallback FallbackPolicy
	// StoreTimeout is the per-call budget for one store round trip.
	StoreTimeout time.Duration
	Now          func() time.Time
}

// Controller makes admission decisions. It holds no counter state of its
// own; the store is the single source of truth.
type Controller struct {
	store        store.Store
	resolver     *quota.Resolver
	fallback     FallbackPolicy
	storeTimeout time.Duration
	now          func() time.Time
	newID        func() string
}

// NewController validates the wiring and builds a Controller.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: counter store is required", admission.ErrInvalidConfiguration)
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("%w: quota resolver is required", admission.ErrInvalidConfiguration)
	}
	if _, err := ParseFallbackPolicy(string(cfg.Fallback)); err != nil {
		return nil, fmt.Errorf("%w: %v", admission.ErrInvalidConfiguration, err)
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = DefaultStoreTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Controller{
		store:        cfg.Store,
		resolver:     cfg.Resolver,
		fallback:     cfg.Fallback,
		storeTimeout: cfg.StoreTimeout,
		now:          cfg.Now,
		newID:        uuid.NewString,
	}, nil
}

// Check decides one request. Limit specs run in resolution order and the
// first rejection short-circuits, so counters behind a rejected spec are
// never charged. A rejection is a normal result; errors mean the decision
// could not be made at all.
func (c *Controller) Check(ctx context.Context, tenantID, operation string) (admission.Result, error) {
	res, err := c.resolver.Resolve(tenantID, operation)
	if err != nil {
		return admission.Result{}, err
	}

	decisionID := c.newID()
	now := unixSeconds(c.now())
	tightest := admission.Result{Allowed: true, Remaining: math.MaxInt64, DecisionID: decisionID}
	for _, chk := range res.Checks {
		out, err := c.applyCheck(ctx, tenantID, chk, res.Cost, now)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return admission.Result{}, err
			}
			return c.degradedResult(decisionID, chk, now), nil
		}
		if !out.Allowed {
			retryAfter := out.RetryAfter
			return admission.Result{
				Allowed:    false,
				Limit:      chk.Limit,
				Remaining:  out.Remaining,
				ResetAt:    ceilUnix(out.ResetAt),
				RetryAfter: &retryAfter,
				DecisionID: decisionID,
			}, nil
		}
		if out.Remaining < tightest.Remaining {
			tightest.Limit = chk.Limit
			tightest.Remaining = out.Remaining
			tightest.ResetAt = ceilUnix(out.ResetAt)
		}
	}
	return tightest, nil
}

// applyCheck runs one limit spec atomically against its counter.
func (c *Controller) applyCheck(ctx context.Context, tenantID string, chk quota.Check, cost int64, now float64) (strategy.Outcome, error) {
	eval, err := strategy.Evaluator(chk.Strategy)
	if err != nil {
		return strategy.Outcome{}, fmt.Errorf("%w: %v", admission.ErrInvalidConfiguration, err)
	}
	params := strategy.Params{
		Limit:  chk.Limit,
		Burst:  chk.Burst,
		Window: float64(chk.WindowSeconds),
	}
	key := store.CounterKey(tenantID, chk.Scope, chk.WindowSeconds)
	ttl := time.Duration(chk.WindowSeconds)*time.Second + ttlGrace

	callCtx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()
	return c.store.AtomicApply(callCtx, key, ttl, func(state strategy.CounterState) (strategy.CounterState, strategy.Outcome) {
		return eval(state, params, cost, now)
	})
}

// degradedResult resolves a store failure through the fallback policy. The
// degraded flag lets callers tell an infrastructure rejection apart from a
// quota rejection.
func (c *Controller) degradedResult(decisionID string, chk quota.Check, now float64) admission.Result {
	r := admission.Result{
		Limit:      chk.Limit,
		Degraded:   true,
		DecisionID: decisionID,
	}
	if c.fallback == FailOpen {
		r.Allowed = true
		r.ResetAt = ceilUnix(now + float64(chk.WindowSeconds))
		return r
	}
	retryAfter := c.storeTimeout.Seconds()
	r.RetryAfter = &retryAfter
	r.ResetAt = ceilUnix(now + retryAfter)
	return r
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func ceilUnix(ts float64) int64 {
	return int64(math.Ceil(ts - strategy.Epsilon))
}
