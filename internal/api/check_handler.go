package api

import (
	"encoding/json"
	"net/http"

	"vectorgate/pkg/admission"
)

func (h *handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.gate == nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	var req admission.CheckRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.TenantID == "" || req.Operation == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	result, err := h.gate.Check(r.Context(), req.TenantID, req.Operation)
	if err != nil {
		writeGateError(w, err)
		return
	}
	writeDecision(w, result)
}
