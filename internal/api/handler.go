// Package api exposes the admission gate over HTTP. Decisions come back as
// JSON bodies plus the conventional X-RateLimit response headers; rejections
// use 429 with Retry-After.
package api

import (
	"net/http"
	"time"

	"vectorgate/pkg/admission"
)

// QuotaReader is the read side of the quota records, for the admin surface.
type QuotaReader interface {
	QuotaFor(tenantID string) (admission.TenantQuota, bool)
}

// Config wires dependencies for the HTTP handler.
type Config struct {
	Gate   admission.Gate
	Quotas QuotaReader
	Now    func() time.Time
}

// NewHandler builds the HTTP handler for the admission API.
func NewHandler(cfg Config) http.Handler {
	h := &handler{
		gate:   cfg.Gate,
		quotas: cfg.Quotas,
		nowFn:  cfg.Now,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/check", h.handleCheck)
	mux.HandleFunc("/v1/usage/", h.handleUsage)
	mux.HandleFunc("/v1/admin/quotas", h.handleAdminQuotas)
	mux.HandleFunc("/v1/admin/quotas/", h.handleAdminQuotaByTenant)
	mux.HandleFunc("/v1/admin/reset/", h.handleAdminReset)
	mux.HandleFunc("/healthz", h.handleHealthz)
	return mux
}

type handler struct {
	gate   admission.Gate
	quotas QuotaReader
	nowFn  func() time.Time
}

func (h *handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) now() time.Time {
	if h.nowFn != nil {
		return h.nowFn()
	}
	return time.Now()
}
