package web

import (
	"net/http"
	"strconv"
	"time"

	"inventory-ledger/internal/app"
	"inventory-ledger/internal/core"
)

// apiDashboard handles GET /api/reports/dashboard.
func (h *Handler) apiDashboard(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.svc.GetDashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, metrics)
}

// apiLowStock handles GET /api/reports/low-stock.
func (h *Handler) apiLowStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetLowStockItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Items)
}

// apiSalesReport handles GET /api/reports/sales?from=YYYY-MM-DD&to=YYYY-MM-DD.
// Both bounds are optional; the default window is the last 30 days and "to"
// is inclusive of the named day.
func (h *Handler) apiSalesReport(w http.ResponseWriter, r *http.Request) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	for _, d := range []string{fromStr, toStr} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			writeError(w, r, "dates must be YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	report, err := h.svc.GetSalesReport(r.Context(), app.SalesReportRequest{From: fromStr, To: toStr})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// apiSlowMoving handles GET /api/reports/slow-moving?days=N.
func (h *Handler) apiSlowMoving(w http.ResponseWriter, r *http.Request) {
	days := 0
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, r, "days must be a positive integer", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		days = n
	}

	result, err := h.svc.GetSlowMovingItems(r.Context(), days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Items)
}

// apiReconciliation handles GET /api/reconciliation, the audit sweep that
// cross-checks every item's quantity against its summed history.
func (h *Handler) apiReconciliation(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CheckReconciliation(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, struct {
		Clean      bool                           `json:"clean"`
		Violations []core.InvariantViolationError `json:"violations"`
	}{Clean: result.Clean, Violations: result.Violations})
}
