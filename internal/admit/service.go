package admit

import (
	"context"
	"time"

	"vectorgate/internal/quota"
	"vectorgate/internal/store"
	"vectorgate/internal/usage"
	"vectorgate/pkg/admission"
)

// Service composes the controller, reporter, and quota plumbing behind the
// public Gate interface. The HTTP layer and embedded callers both talk to
// this type.
type Service struct {
	controller *Controller
	reporter   *usage.Reporter
	source     *quota.StaticSource
	resolver   *quota.Resolver
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Store        store.Store
	Source       *quota.StaticSource
	Resolver     *quota.Resolver
	Fallback     FallbackPolicy
	StoreTimeout time.Duration
	Now          func() time.Time
}

var _ admission.Gate = (*Service)(nil)

// NewService builds the full admission stack.
func NewService(cfg ServiceConfig) (*Service, error) {
	controller, err := NewController(Config{
		Store:        cfg.Store,
		Resolver:     cfg.Resolver,
		Fallback:     cfg.Fallback,
		StoreTimeout: cfg.StoreTimeout,
		Now:          cfg.Now,
	})
	if err != nil {
		return nil, err
	}
	return &Service{
		controller: controller,
		reporter:   usage.NewReporter(cfg.Store, cfg.Resolver, cfg.Now),
		source:     cfg.Source,
		resolver:   cfg.Resolver,
	}, nil
}

// Check decides one request.
func (s *Service) Check(ctx context.Context, tenantID, operation string) (admission.Result, error) {
	return s.controller.Check(ctx, tenantID, operation)
}

// GetUsage snapshots a tenant's counters.
func (s *Service) GetUsage(ctx context.Context, tenantID string) (admission.UsageSnapshot, error) {
	return s.reporter.GetUsage(ctx, tenantID)
}

// Reset clears a tenant's counters.
func (s *Service) Reset(ctx context.Context, tenantID string) error {
	return s.reporter.Reset(ctx, tenantID)
}

// UpdateQuota validates and stores a tenant record, then drops the cached
// copy so the change takes effect within one resolve.
func (s *Service) UpdateQuota(_ context.Context, q admission.TenantQuota) error {
	if err := quota.ValidateQuota(q); err != nil {
		return err
	}
	s.source.Put(q)
	s.resolver.Invalidate(q.TenantID)
	return nil
}
