package store

import "fmt"

// ScopeGlobal is the scope label for a tenant's cross-operation counters.
const ScopeGlobal = "global"

const keyPrefix = "ratelimit"

// CounterKey builds the store key for one counter:
// ratelimit:{tenant}:{scope}:{window_seconds}.
func CounterKey(tenantID, scope string, windowSeconds int64) string {
	return fmt.Sprintf("%s:%s:%s:%d", keyPrefix, tenantID, scope, windowSeconds)
}

// TenantPrefix returns the key prefix covering all counters of a tenant.
func TenantPrefix(tenantID string) string {
	return fmt.Sprintf("%s:%s:", keyPrefix, tenantID)
}
