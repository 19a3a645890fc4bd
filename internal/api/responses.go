package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"vectorgate/pkg/admission"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Error: code})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeDecision renders an admission result: rate-limit headers on every
// decision, 200 on admit, 429 plus Retry-After on reject.
func writeDecision(w http.ResponseWriter, result admission.Result) {
	header := w.Header()
	header.Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
	header.Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
	header.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

	status := http.StatusOK
	if !result.Allowed {
		status = http.StatusTooManyRequests
		if result.RetryAfter != nil {
			secs := int64(math.Ceil(*result.RetryAfter))
			if secs < 1 {
				secs = 1
			}
			header.Set("Retry-After", strconv.FormatInt(secs, 10))
		}
	}
	writeJSON(w, status, result)
}

// writeGateError maps gate errors onto the HTTP surface.
func writeGateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, admission.ErrUnknownTenant):
		writeError(w, http.StatusNotFound, "unknown_tenant")
	case errors.Is(err, admission.ErrInvalidConfiguration):
		writeError(w, http.StatusInternalServerError, "invalid_configuration")
	case errors.Is(err, admission.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
