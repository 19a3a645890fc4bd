// Package quota resolves the effective limit set for a (tenant, operation)
// pair by merging tier defaults, per-tenant records, and per-operation
// overrides.
package quota

import (
	"sync"

	"vectorgate/pkg/admission"
)

// Source supplies tenant quota records. Implementations must be safe for
// concurrent use.
type Source interface {
	QuotaFor(tenantID string) (admission.TenantQuota, bool)
}

// StaticSource holds quota records in memory. It seeds from configuration at
// startup and accepts updates from the admin surface.
type StaticSource struct {
	mu      sync.RWMutex
	records map[string]admission.TenantQuota
}

// NewStaticSource builds a source from the given records.
func NewStaticSource(records []admission.TenantQuota) *StaticSource {
	s := &StaticSource{records: make(map[string]admission.TenantQuota, len(records))}
	for _, q := range records {
		s.records[q.TenantID] = q
	}
	return s
}

// QuotaFor returns the record for tenantID, if any.
func (s *StaticSource) QuotaFor(tenantID string) (admission.TenantQuota, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.records[tenantID]
	return q, ok
}

// Put stores or replaces a tenant record.
func (s *StaticSource) Put(q admission.TenantQuota) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[q.TenantID] = q
}
