package admission

// Tier names a tenant class with associated default limits.
type Tier string

const (
	// TierDefault is the entry-level tenant class.
	TierDefault Tier = "default"
	// TierPremium is the mid tenant class.
	TierPremium Tier = "premium"
	// TierEnterprise is the top tenant class.
	TierEnterprise Tier = "enterprise"
)

// TenantQuota is the per-tenant limit record. It is created and updated by
// the admin surface and read-only to the admission core.
type TenantQuota struct {
	TenantID          string `json:"tenant_id" yaml:"tenant_id"`
	Tier              Tier   `json:"tier" yaml:"tier"`
	RequestsPerMinute int64  `json:"requests_per_minute" yaml:"requests_per_minute"`
	RequestsPerHour   int64  `json:"requests_per_hour" yaml:"requests_per_hour"`
	RequestsPerDay    int64  `json:"requests_per_day" yaml:"requests_per_day"`
	BurstSize         int64  `json:"burst_size" yaml:"burst_size"`
	Strategy          string `json:"strategy" yaml:"strategy"`
}

// Result is the admission decision for one request. A rejection is a normal
// result, never an error.
type Result struct {
	Allowed   bool   `json:"allowed"`
	Limit     int64  `json:"limit"`
	Remaining int64  `json:"remaining"`
	// ResetAt is the Unix time the binding counter resets.
	ResetAt int64 `json:"reset_at"`
	// RetryAfter is the seconds to wait before retrying. Only set on
	// rejection.
	RetryAfter *float64 `json:"retry_after,omitempty"`
	// Degraded marks a decision taken under the fallback policy because the
	// counter store was unreachable.
	Degraded bool `json:"degraded,omitempty"`
	// DecisionID identifies the decision record for external observability.
	DecisionID string `json:"decision_id,omitempty"`
}

// CheckRequest asks for an admission decision.
type CheckRequest struct {
	TenantID  string `json:"tenant_id"`
	Operation string `json:"operation"`
}

// WindowUsage reports one counter's consumption.
type WindowUsage struct {
	Scope         string `json:"scope"`
	WindowSeconds int64  `json:"window_seconds"`
	Limit         int64  `json:"limit"`
	Remaining     int64  `json:"remaining"`
	ResetAt       int64  `json:"reset_at"`
}

// UsageSnapshot aggregates a tenant's counters at a point in time.
type UsageSnapshot struct {
	TenantID   string        `json:"tenant_id"`
	CapturedAt int64         `json:"captured_at"`
	Windows    []WindowUsage `json:"windows"`
}
