package quota

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"vectorgate/internal/store"
	"vectorgate/internal/strategy"
	"vectorgate/pkg/admission"
)

// Window lengths in seconds for the counter-based strategies.
const (
	windowMinute = 60
	windowHour   = 3600
	windowDay    = 86400
)

// Check is one limit spec the admission controller must evaluate.
type Check struct {
	Scope         string
	Strategy      strategy.Strategy
	WindowSeconds int64
	Limit         int64
	Burst         int64
}

// Resolution is the full evaluation plan for one request. Checks are ordered
// the way the controller must evaluate them: operation-scoped before global,
// shortest window first.
type Resolution struct {
	TenantID  string
	Operation string
	Cost      int64
	Checks    []Check
}

// Config wires a Resolver.
type Config struct {
	Source Source
	// TierDefaults supplies the quota template applied to tenants without an
	// explicit record. The template's tenant_id is ignored.
	TierDefaults map[admission.Tier]admission.TenantQuota
	// DefaultTier, when set, admits unknown tenants under that tier's
	// defaults. When empty, unknown tenants are a hard failure.
	DefaultTier admission.Tier
	// Costs maps operation names to their quota cost. Unlisted operations
	// cost 1.
	Costs map[string]int64
	// Overrides narrows requests_per_minute for a (tier, operation) pair.
	Overrides map[admission.Tier]map[string]int64
	// CacheTTL bounds tenant record staleness. Zero disables caching.
	CacheTTL time.Duration
	Now      func() time.Time
}

type cacheEntry struct {
	quota     admission.TenantQuota
	expiresAt time.Time
}

// Resolver computes evaluation plans. Tenant records are read through a
// bounded-staleness cache; everything else is immutable after construction.
type Resolver struct {
	cfg Config

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewResolver validates the configuration and builds a Resolver. Invalid
// limits, costs, or overrides fail here rather than per request.
func NewResolver(cfg Config) (*Resolver, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("%w: quota source is required", admission.ErrInvalidConfiguration)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	for tier, q := range cfg.TierDefaults {
		if err := validateTier(tier); err != nil {
			return nil, err
		}
		q.TenantID = string(tier)
		if err := ValidateQuota(q); err != nil {
			return nil, fmt.Errorf("tier defaults: %w", err)
		}
	}
	if cfg.DefaultTier != "" {
		if _, ok := cfg.TierDefaults[cfg.DefaultTier]; !ok {
			return nil, fmt.Errorf("%w: default tier %q has no tier defaults", admission.ErrInvalidConfiguration, cfg.DefaultTier)
		}
	}
	for op, cost := range cfg.Costs {
		if cost <= 0 {
			return nil, fmt.Errorf("%w: cost for operation %q must be positive, got %d", admission.ErrInvalidConfiguration, op, cost)
		}
	}
	for tier, ops := range cfg.Overrides {
		if err := validateTier(tier); err != nil {
			return nil, err
		}
		for op, limit := range ops {
			if limit <= 0 {
				return nil, fmt.Errorf("%w: override for (%s, %s) must be positive, got %d", admission.ErrInvalidConfiguration, tier, op, limit)
			}
		}
	}
	return &Resolver{cfg: cfg, cache: map[string]cacheEntry{}}, nil
}

// Cost returns the configured cost for an operation, defaulting to 1.
func (r *Resolver) Cost(operation string) int64 {
	if c, ok := r.cfg.Costs[operation]; ok {
		return c
	}
	return 1
}

// Resolve builds the evaluation plan for one (tenant, operation) request.
func (r *Resolver) Resolve(tenantID, operation string) (Resolution, error) {
	q, err := r.quotaFor(tenantID)
	if err != nil {
		return Resolution{}, err
	}
	strat, err := strategy.Parse(q.Strategy)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: tenant %s: %v", admission.ErrInvalidConfiguration, tenantID, err)
	}

	res := Resolution{
		TenantID:  tenantID,
		Operation: operation,
		Cost:      r.Cost(operation),
	}
	if limit, ok := r.override(q.Tier, operation); ok {
		res.Checks = append(res.Checks, operationCheck(operation, strat, limit, q.BurstSize))
	}
	res.Checks = append(res.Checks, globalChecks(q, strat)...)
	return res, nil
}

// UsageChecks lists every check a tenant's counters may exist under, for
// read-only usage reporting. Overrides come first in operation order, then
// the global windows.
func (r *Resolver) UsageChecks(tenantID string) ([]Check, error) {
	q, err := r.quotaFor(tenantID)
	if err != nil {
		return nil, err
	}
	strat, err := strategy.Parse(q.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: tenant %s: %v", admission.ErrInvalidConfiguration, tenantID, err)
	}

	var checks []Check
	ops := make([]string, 0, len(r.cfg.Overrides[q.Tier]))
	for op := range r.cfg.Overrides[q.Tier] {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		checks = append(checks, operationCheck(op, strat, r.cfg.Overrides[q.Tier][op], q.BurstSize))
	}
	checks = append(checks, globalChecks(q, strat)...)
	return checks, nil
}

// Invalidate drops a tenant's cached record so the next resolve re-reads the
// source. Called after admin quota updates.
func (r *Resolver) Invalidate(tenantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, tenantID)
}

func (r *Resolver) override(tier admission.Tier, operation string) (int64, bool) {
	limit, ok := r.cfg.Overrides[tier][operation]
	return limit, ok
}

// quotaFor loads a tenant record through the cache, falling back to the
// default tier template for unknown tenants.
func (r *Resolver) quotaFor(tenantID string) (admission.TenantQuota, error) {
	now := r.cfg.Now()
	r.mu.Lock()
	if e, ok := r.cache[tenantID]; ok && e.expiresAt.After(now) {
		r.mu.Unlock()
		return e.quota, nil
	}
	r.mu.Unlock()

	q, ok := r.cfg.Source.QuotaFor(tenantID)
	if !ok {
		if r.cfg.DefaultTier == "" {
			return admission.TenantQuota{}, fmt.Errorf("%w: %s", admission.ErrUnknownTenant, tenantID)
		}
		q = r.cfg.TierDefaults[r.cfg.DefaultTier]
		q.TenantID = tenantID
		q.Tier = r.cfg.DefaultTier
	}
	if err := ValidateQuota(q); err != nil {
		return admission.TenantQuota{}, err
	}

	if r.cfg.CacheTTL > 0 {
		r.mu.Lock()
		r.cache[tenantID] = cacheEntry{quota: q, expiresAt: now.Add(r.cfg.CacheTTL)}
		r.mu.Unlock()
	}
	return q, nil
}

// operationCheck narrows the per-minute limit for one operation. Bucket
// capacities never exceed the narrowed limit.
func operationCheck(operation string, strat strategy.Strategy, limit, burst int64) Check {
	if burst > limit {
		burst = limit
	}
	return Check{
		Scope:         operation,
		Strategy:      strat,
		WindowSeconds: windowMinute,
		Limit:         limit,
		Burst:         burst,
	}
}

// globalChecks expands a tenant record into its global limit specs: one per
// window for the counter strategies, a single bucket otherwise.
func globalChecks(q admission.TenantQuota, strat strategy.Strategy) []Check {
	if !strat.Windowed() {
		return []Check{{
			Scope:         store.ScopeGlobal,
			Strategy:      strat,
			WindowSeconds: windowMinute,
			Limit:         q.RequestsPerMinute,
			Burst:         q.BurstSize,
		}}
	}
	return []Check{
		{Scope: store.ScopeGlobal, Strategy: strat, WindowSeconds: windowMinute, Limit: q.RequestsPerMinute},
		{Scope: store.ScopeGlobal, Strategy: strat, WindowSeconds: windowHour, Limit: q.RequestsPerHour},
		{Scope: store.ScopeGlobal, Strategy: strat, WindowSeconds: windowDay, Limit: q.RequestsPerDay},
	}
}
