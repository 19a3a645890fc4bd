// Package usage aggregates a tenant's counters read-only for dashboards and
// response headers, and hosts the admin reset.
package usage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"vectorgate/internal/quota"
	"vectorgate/internal/store"
	"vectorgate/internal/strategy"
	"vectorgate/pkg/admission"
)

// Reporter reads counters without consuming budget.
type Reporter struct {
	store    store.Store
	resolver *quota.Resolver
	now      func() time.Time
}

// NewReporter builds a Reporter. A nil now means wall time.
func NewReporter(st store.Store, resolver *quota.Resolver, now func() time.Time) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{store: st, resolver: resolver, now: now}
}

// GetUsage snapshots every counter the tenant's quota plan can touch. Each
// counter is peeked with a zero-cost evaluation, so the snapshot never
// mutates state.
func (r *Reporter) GetUsage(ctx context.Context, tenantID string) (admission.UsageSnapshot, error) {
	checks, err := r.resolver.UsageChecks(tenantID)
	if err != nil {
		return admission.UsageSnapshot{}, err
	}

	now := float64(r.now().UnixNano()) / float64(time.Second)
	snap := admission.UsageSnapshot{
		TenantID:   tenantID,
		CapturedAt: int64(now),
		Windows:    make([]admission.WindowUsage, 0, len(checks)),
	}
	for _, chk := range checks {
		key := store.CounterKey(tenantID, chk.Scope, chk.WindowSeconds)
		state, _, err := r.store.Peek(ctx, key)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return admission.UsageSnapshot{}, err
			}
			return admission.UsageSnapshot{}, fmt.Errorf("%w: %v", admission.ErrStoreUnavailable, err)
		}
		eval, err := strategy.Evaluator(chk.Strategy)
		if err != nil {
			return admission.UsageSnapshot{}, fmt.Errorf("%w: %v", admission.ErrInvalidConfiguration, err)
		}
		_, out := eval(state, strategy.Params{
			Limit:  chk.Limit,
			Burst:  chk.Burst,
			Window: float64(chk.WindowSeconds),
		}, 0, now)
		snap.Windows = append(snap.Windows, admission.WindowUsage{
			Scope:         chk.Scope,
			WindowSeconds: chk.WindowSeconds,
			Limit:         chk.Limit,
			Remaining:     out.Remaining,
			ResetAt:       int64(math.Ceil(out.ResetAt - strategy.Epsilon)),
		})
	}
	return snap, nil
}

// Reset deletes every counter of a tenant. The next check starts from a
// clean slate. This is the only delete path for counter state.
func (r *Reporter) Reset(ctx context.Context, tenantID string) error {
	if _, err := r.resolver.UsageChecks(tenantID); err != nil {
		return err
	}
	if _, err := r.store.DeletePrefix(ctx, store.TenantPrefix(tenantID)); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", admission.ErrStoreUnavailable, err)
	}
	return nil
}
