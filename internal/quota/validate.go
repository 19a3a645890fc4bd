package quota

import (
	"fmt"

	"vectorgate/internal/strategy"
	"vectorgate/pkg/admission"
)

// burstFactor caps burst_size relative to the per-minute limit.
const burstFactor = 10

// ValidateQuota checks a tenant record for internal consistency. Violations
// wrap admission.ErrInvalidConfiguration.
func ValidateQuota(q admission.TenantQuota) error {
	if q.TenantID == "" {
		return fmt.Errorf("%w: missing tenant_id", admission.ErrInvalidConfiguration)
	}
	if err := validateTier(q.Tier); err != nil {
		return fmt.Errorf("tenant %s: %w", q.TenantID, err)
	}
	if err := validateLimits(q); err != nil {
		return fmt.Errorf("tenant %s: %w", q.TenantID, err)
	}
	if _, err := strategy.Parse(q.Strategy); err != nil {
		return fmt.Errorf("%w: tenant %s: %v", admission.ErrInvalidConfiguration, q.TenantID, err)
	}
	return nil
}

func validateTier(tier admission.Tier) error {
	switch tier {
	case admission.TierDefault, admission.TierPremium, admission.TierEnterprise:
		return nil
	}
	return fmt.Errorf("%w: unknown tier %q", admission.ErrInvalidConfiguration, tier)
}

func validateLimits(q admission.TenantQuota) error {
	limits := []struct {
		name  string
		value int64
	}{
		{"requests_per_minute", q.RequestsPerMinute},
		{"requests_per_hour", q.RequestsPerHour},
		{"requests_per_day", q.RequestsPerDay},
		{"burst_size", q.BurstSize},
	}
	for _, l := range limits {
		if l.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", admission.ErrInvalidConfiguration, l.name, l.value)
		}
	}
	if q.BurstSize > q.RequestsPerMinute*burstFactor {
		return fmt.Errorf("%w: burst_size %d exceeds %dx requests_per_minute",
			admission.ErrInvalidConfiguration, q.BurstSize, burstFactor)
	}
	return nil
}
