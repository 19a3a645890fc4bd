package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"vectorgate/pkg/admission"
)

func (h *handler) handleAdminQuotas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.gate == nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	var q admission.TenantQuota
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if err := h.gate.UpdateQuota(r.Context(), q); err != nil {
		if errors.Is(err, admission.ErrInvalidConfiguration) {
			writeError(w, http.StatusBadRequest, "invalid_quota")
			return
		}
		writeGateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *handler) handleAdminQuotaByTenant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.quotas == nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	tenantID := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/v1/admin/quotas/"))
	if tenantID == "" || strings.Contains(tenantID, "/") {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	q, ok := h.quotas.QuotaFor(tenantID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_tenant")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *handler) handleAdminReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.gate == nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	tenantID := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/v1/admin/reset/"))
	if tenantID == "" || strings.Contains(tenantID, "/") {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	if err := h.gate.Reset(r.Context(), tenantID); err != nil {
		writeGateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "tenant_id": tenantID})
}
