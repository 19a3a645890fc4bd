package quota

import (
	"errors"
	"testing"
	"time"

	"vectorgate/internal/store"
	"vectorgate/internal/strategy"
	"vectorgate/internal/testutil"
	"vectorgate/pkg/admission"
)

func premiumQuota(tenantID string) admission.TenantQuota {
	return admission.TenantQuota{
		TenantID:          tenantID,
		Tier:              admission.TierPremium,
		RequestsPerMinute: 100,
		RequestsPerHour:   1000,
		RequestsPerDay:    10000,
		BurstSize:         20,
		Strategy:          string(strategy.SlidingWindow),
	}
}

func newTestResolver(t *testing.T, cfg Config) *Resolver {
	t.Helper()
	r, err := NewResolver(cfg)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return r
}

func TestResolver_UnknownTenantWithoutDefaultTier(t *testing.T) {
	r := newTestResolver(t, Config{Source: NewStaticSource(nil)})

	_, err := r.Resolve("ghost", "search")
	if !errors.Is(err, admission.ErrUnknownTenant) {
		t.Fatalf("expected ErrUnknownTenant, got %v", err)
	}
}

func TestResolver_DefaultTierAdmitsUnknownTenant(t *testing.T) {
	r := newTestResolver(t, Config{
		Source: NewStaticSource(nil),
		TierDefaults: map[admission.Tier]admission.TenantQuota{
			admission.TierDefault: premiumQuota(""),
		},
		DefaultTier: admission.TierDefault,
	})

	res, err := r.Resolve("ghost", "search")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.TenantID != "ghost" {
		t.Fatalf("expected tenant carried through, got %q", res.TenantID)
	}
	if len(res.Checks) != 3 {
		t.Fatalf("expected 3 global window checks, got %d", len(res.Checks))
	}
}

func TestResolver_OverridePrecedesGlobal(t *testing.T) {
	r := newTestResolver(t, Config{
		Source: NewStaticSource([]admission.TenantQuota{premiumQuota("acme")}),
		Overrides: map[admission.Tier]map[string]int64{
			admission.TierPremium: {"search": 10},
		},
	})

	res, err := r.Resolve("acme", "search")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Checks) != 4 {
		t.Fatalf("expected override plus 3 global checks, got %d", len(res.Checks))
	}
	first := res.Checks[0]
	if first.Scope != "search" || first.Limit != 10 || first.WindowSeconds != 60 {
		t.Fatalf("expected operation check first, got %+v", first)
	}
	wantWindows := []int64{60, 60, 3600, 86400}
	for i, c := range res.Checks {
		if c.WindowSeconds != wantWindows[i] {
			t.Fatalf("check %d: expected window %d, got %d", i, wantWindows[i], c.WindowSeconds)
		}
	}
	for _, c := range res.Checks[1:] {
		if c.Scope != store.ScopeGlobal {
			t.Fatalf("expected global scope after override, got %+v", c)
		}
	}
}

func TestResolver_OverrideIgnoredForOtherTier(t *testing.T) {
	r := newTestResolver(t, Config{
		Source: NewStaticSource([]admission.TenantQuota{premiumQuota("acme")}),
		Overrides: map[admission.Tier]map[string]int64{
			admission.TierEnterprise: {"search": 10},
		},
	})

	res, err := r.Resolve("acme", "search")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Checks) != 3 {
		t.Fatalf("expected only global checks, got %d", len(res.Checks))
	}
}

func TestResolver_BucketStrategySingleWindow(t *testing.T) {
	q := premiumQuota("acme")
	q.Strategy = string(strategy.TokenBucket)
	r := newTestResolver(t, Config{
		Source: NewStaticSource([]admission.TenantQuota{q}),
		Overrides: map[admission.Tier]map[string]int64{
			admission.TierPremium: {"upsert": 5},
		},
	})

	res, err := r.Resolve("acme", "upsert")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Checks) != 2 {
		t.Fatalf("expected override plus one bucket check, got %d", len(res.Checks))
	}
	op, global := res.Checks[0], res.Checks[1]
	if op.Burst != 5 {
		t.Fatalf("expected bucket capacity capped at override limit, got %d", op.Burst)
	}
	if global.Limit != q.RequestsPerMinute || global.Burst != q.BurstSize {
		t.Fatalf("unexpected global bucket check %+v", global)
	}
}

func TestResolver_CostDefaultsToOne(t *testing.T) {
	r := newTestResolver(t, Config{
		Source: NewStaticSource([]admission.TenantQuota{premiumQuota("acme")}),
		Costs:  map[string]int64{"batch_upsert": 10},
	})

	res, err := r.Resolve("acme", "batch_upsert")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Cost != 10 {
		t.Fatalf("expected configured cost 10, got %d", res.Cost)
	}
	res, err = r.Resolve("acme", "search")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Cost != 1 {
		t.Fatalf("expected default cost 1, got %d", res.Cost)
	}
}

func TestResolver_InvalidConfigurationFailsFast(t *testing.T) {
	bad := premiumQuota("")
	bad.RequestsPerHour = 0
	_, err := NewResolver(Config{
		Source:       NewStaticSource(nil),
		TierDefaults: map[admission.Tier]admission.TenantQuota{admission.TierDefault: bad},
		DefaultTier:  admission.TierDefault,
	})
	if !errors.Is(err, admission.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration for zero limit, got %v", err)
	}

	_, err = NewResolver(Config{
		Source: NewStaticSource(nil),
		Costs:  map[string]int64{"search": 0},
	})
	if !errors.Is(err, admission.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration for zero cost, got %v", err)
	}
}

func TestResolver_InvalidTenantRecordSurfaces(t *testing.T) {
	bad := premiumQuota("acme")
	bad.BurstSize = bad.RequestsPerMinute * 100
	r := newTestResolver(t, Config{Source: NewStaticSource([]admission.TenantQuota{bad})})

	_, err := r.Resolve("acme", "search")
	if !errors.Is(err, admission.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestResolver_CacheBoundsStaleness(t *testing.T) {
	clock := testutil.NewFakeClock(time.Unix(1_700_000_000, 0))
	src := NewStaticSource([]admission.TenantQuota{premiumQuota("acme")})
	r := newTestResolver(t, Config{
		Source:   src,
		CacheTTL: 5 * time.Second,
		Now:      clock.Now,
	})

	res, err := r.Resolve("acme", "search")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Checks[0].Limit != 100 {
		t.Fatalf("expected initial limit 100, got %d", res.Checks[0].Limit)
	}

	updated := premiumQuota("acme")
	updated.RequestsPerMinute = 50
	src.Put(updated)

	res, _ = r.Resolve("acme", "search")
	if res.Checks[0].Limit != 100 {
		t.Fatalf("expected cached limit within TTL, got %d", res.Checks[0].Limit)
	}

	clock.Advance(6 * time.Second)
	res, _ = r.Resolve("acme", "search")
	if res.Checks[0].Limit != 50 {
		t.Fatalf("expected refreshed limit after TTL, got %d", res.Checks[0].Limit)
	}
}

func TestResolver_InvalidateDropsCachedRecord(t *testing.T) {
	clock := testutil.NewFakeClock(time.Unix(1_700_000_000, 0))
	src := NewStaticSource([]admission.TenantQuota{premiumQuota("acme")})
	r := newTestResolver(t, Config{
		Source:   src,
		CacheTTL: time.Minute,
		Now:      clock.Now,
	})

	if _, err := r.Resolve("acme", "search"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	updated := premiumQuota("acme")
	updated.RequestsPerMinute = 50
	src.Put(updated)
	r.Invalidate("acme")

	res, err := r.Resolve("acme", "search")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Checks[0].Limit != 50 {
		t.Fatalf("expected updated limit after invalidation, got %d", res.Checks[0].Limit)
	}
}

func TestResolver_UsageChecksListOverridesThenGlobal(t *testing.T) {
	r := newTestResolver(t, Config{
		Source: NewStaticSource([]admission.TenantQuota{premiumQuota("acme")}),
		Overrides: map[admission.Tier]map[string]int64{
			admission.TierPremium: {"search": 10, "delete": 20},
		},
	})

	checks, err := r.UsageChecks("acme")
	if err != nil {
		t.Fatalf("usage checks: %v", err)
	}
	wantScopes := []string{"delete", "search", store.ScopeGlobal, store.ScopeGlobal, store.ScopeGlobal}
	if len(checks) != len(wantScopes) {
		t.Fatalf("expected %d checks, got %d", len(wantScopes), len(checks))
	}
	for i, c := range checks {
		if c.Scope != wantScopes[i] {
			t.Fatalf("check %d: expected scope %q, got %q", i, wantScopes[i], c.Scope)
		}
	}
}
