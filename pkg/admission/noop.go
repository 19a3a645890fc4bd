package admission

import "context"

// NoopGate is a Gate implementation that admits every request.
var NoopGate Gate = noopGate{}

// noopGate satisfies Gate without enforcing quotas.
type noopGate struct{}

// Check admits every request.
func (noopGate) Check(_ context.Context, _, _ string) (Result, error) {
	return Result{Allowed: true}, nil
}

// GetUsage reports an empty snapshot.
func (noopGate) GetUsage(_ context.Context, tenantID string) (UsageSnapshot, error) {
	return UsageSnapshot{TenantID: tenantID}, nil
}

// Reset accepts every reset.
func (noopGate) Reset(_ context.Context, _ string) error {
	return nil
}

// UpdateQuota accepts every update.
func (noopGate) UpdateQuota(_ context.Context, _ TenantQuota) error {
	return nil
}
