package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"inventory-ledger/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a service error onto the HTTP surface: missing
// references are 404, business rejections 409, an exhausted retry loop 503,
// everything else 500. Business rejections keep their full message; the
// client is expected to show it to the operator.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrItemNotFound), errors.Is(err, core.ErrOrderNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrInsufficientStock):
		writeError(w, r, err.Error(), "INSUFFICIENT_STOCK", http.StatusConflict)
	case errors.Is(err, core.ErrOrderAlreadySettled):
		writeError(w, r, err.Error(), "ALREADY_SETTLED", http.StatusConflict)
	case errors.Is(err, core.ErrDuplicateItem):
		writeError(w, r, err.Error(), "DUPLICATE_ITEM", http.StatusConflict)
	case errors.Is(err, core.ErrRetryExhausted):
		writeError(w, r, err.Error(), "STORE_UNAVAILABLE", http.StatusServiceUnavailable)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
