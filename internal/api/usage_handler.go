package api

import (
	"net/http"
	"strings"
)

func (h *handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.gate == nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	tenantID := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/v1/usage/"))
	if tenantID == "" || strings.Contains(tenantID, "/") {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	snap, err := h.gate.GetUsage(r.Context(), tenantID)
	if err != nil {
		writeGateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
