package usage

import (
	"errors"
	"testing"
	"time"

	"vectorgate/internal/quota"
	"vectorgate/internal/store"
	"vectorgate/internal/store/memstore"
	"vectorgate/internal/strategy"
	"vectorgate/internal/testutil"
	"vectorgate/pkg/admission"
)

var testStart = time.Unix(1_700_000_000, 0)

type env struct {
	clock    *testutil.FakeClock
	store    *memstore.Store
	reporter *Reporter
}

func newEnv(t *testing.T, quotas []admission.TenantQuota) *env {
	t.Helper()
	clock := testutil.NewFakeClock(testStart)
	resolver, err := quota.NewResolver(quota.Config{
		Source: quota.NewStaticSource(quotas),
		Now:    clock.Now,
	})
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	st := memstore.New(clock)
	return &env{
		clock:    clock,
		store:    st,
		reporter: NewReporter(st, resolver, clock.Now),
	}
}

// consume charges cost against one fixed-window counter directly.
func (e *env) consume(t *testing.T, tenantID string, windowSeconds, limit, cost int64) {
	t.Helper()
	ctx := testutil.Context(t, time.Second)
	eval, err := strategy.Evaluator(strategy.FixedWindow)
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	key := store.CounterKey(tenantID, store.ScopeGlobal, windowSeconds)
	now := float64(e.clock.Now().Unix())
	params := strategy.Params{Limit: limit, Window: float64(windowSeconds)}
	_, err = e.store.AtomicApply(ctx, key, time.Duration(windowSeconds)*time.Second, func(state strategy.CounterState) (strategy.CounterState, strategy.Outcome) {
		return eval(state, params, cost, now)
	})
	if err != nil {
		t.Fatalf("seed counter: %v", err)
	}
}

func fixedQuota(tenantID string) admission.TenantQuota {
	return admission.TenantQuota{
		TenantID:          tenantID,
		Tier:              admission.TierDefault,
		RequestsPerMinute: 100,
		RequestsPerHour:   1000,
		RequestsPerDay:    10000,
		BurstSize:         100,
		Strategy:          string(strategy.FixedWindow),
	}
}

func TestGetUsage_ReportsConsumedBudget(t *testing.T) {
	e := newEnv(t, []admission.TenantQuota{fixedQuota("acme")})
	ctx := testutil.Context(t, time.Second)
	e.consume(t, "acme", 60, 100, 3)

	snap, err := e.reporter.GetUsage(ctx, "acme")
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}
	if snap.TenantID != "acme" {
		t.Fatalf("expected tenant acme, got %q", snap.TenantID)
	}
	if len(snap.Windows) != 3 {
		t.Fatalf("expected 3 global windows, got %d", len(snap.Windows))
	}
	minute := snap.Windows[0]
	if minute.WindowSeconds != 60 || minute.Remaining != 97 {
		t.Fatalf("expected minute remaining 97, got %+v", minute)
	}
	for _, w := range snap.Windows[1:] {
		if w.Remaining != w.Limit {
			t.Fatalf("untouched window should be at full limit, got %+v", w)
		}
	}
}

func TestGetUsage_DoesNotMutateCounters(t *testing.T) {
	e := newEnv(t, []admission.TenantQuota{fixedQuota("acme")})
	ctx := testutil.Context(t, time.Second)
	e.consume(t, "acme", 60, 100, 5)

	key := store.CounterKey("acme", store.ScopeGlobal, 60)
	before, _, err := e.store.Peek(ctx, key)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}

	first, err := e.reporter.GetUsage(ctx, "acme")
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}
	second, err := e.reporter.GetUsage(ctx, "acme")
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}
	if first.Windows[0].Remaining != second.Windows[0].Remaining {
		t.Fatalf("snapshots diverged: %d then %d", first.Windows[0].Remaining, second.Windows[0].Remaining)
	}

	after, _, err := e.store.Peek(ctx, key)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if before != after {
		t.Fatalf("usage read mutated state: %+v -> %+v", before, after)
	}
}

func TestGetUsage_FreshBucketAtFullCapacity(t *testing.T) {
	q := fixedQuota("acme")
	q.Strategy = string(strategy.TokenBucket)
	q.RequestsPerMinute = 10
	q.BurstSize = 10
	e := newEnv(t, []admission.TenantQuota{q})
	ctx := testutil.Context(t, time.Second)

	snap, err := e.reporter.GetUsage(ctx, "acme")
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}
	if len(snap.Windows) != 1 {
		t.Fatalf("expected single bucket window, got %d", len(snap.Windows))
	}
	if snap.Windows[0].Remaining != 10 {
		t.Fatalf("expected full bucket for idle tenant, got %d", snap.Windows[0].Remaining)
	}
}

func TestGetUsage_UnknownTenant(t *testing.T) {
	e := newEnv(t, nil)
	ctx := testutil.Context(t, time.Second)

	if _, err := e.reporter.GetUsage(ctx, "ghost"); !errors.Is(err, admission.ErrUnknownTenant) {
		t.Fatalf("expected ErrUnknownTenant, got %v", err)
	}
}

func TestReset_DeletesOnlyTenantCounters(t *testing.T) {
	e := newEnv(t, []admission.TenantQuota{fixedQuota("acme"), fixedQuota("other")})
	ctx := testutil.Context(t, time.Second)
	e.consume(t, "acme", 60, 100, 3)
	e.consume(t, "acme", 3600, 1000, 3)
	e.consume(t, "other", 60, 100, 3)

	if err := e.reporter.Reset(ctx, "acme"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	snap, err := e.reporter.GetUsage(ctx, "acme")
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}
	for _, w := range snap.Windows {
		if w.Remaining != w.Limit {
			t.Fatalf("expected clean slate after reset, got %+v", w)
		}
	}
	otherSnap, err := e.reporter.GetUsage(ctx, "other")
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}
	if otherSnap.Windows[0].Remaining != 97 {
		t.Fatalf("reset must not touch other tenants, got %+v", otherSnap.Windows[0])
	}
}
