package admission

import "context"

// Gate is the client-facing API: one admission check per inbound request
// plus the administrative surface.
type Gate interface {
	Check(ctx context.Context, tenantID, operation string) (Result, error)
	GetUsage(ctx context.Context, tenantID string) (UsageSnapshot, error)
	Reset(ctx context.Context, tenantID string) error
	UpdateQuota(ctx context.Context, quota TenantQuota) error
}
