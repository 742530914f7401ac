package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"inventory-ledger/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	// ── Items ─────────────────────────────────────────────────────────────────
	r.Get("/api/items", h.apiListItems)
	r.Post("/api/items", h.apiCreateItem)
	r.Get("/api/items/{id}", h.apiGetItem)
	r.Patch("/api/items/{id}", h.apiUpdateItem)
	r.Post("/api/items/{id}/adjust", h.apiAdjustQuantity)
	r.Get("/api/items/{id}/history", h.apiItemHistory)
	r.Get("/api/scan/{barcode}", h.apiScanBarcode)

	// ── Orders ────────────────────────────────────────────────────────────────
	r.Get("/api/orders", h.apiListOrders)
	r.Post("/api/orders", h.apiCreateOrder)
	r.Get("/api/orders/{id}", h.apiGetOrder)
	r.Post("/api/orders/{id}/complete", h.apiCompleteOrder)
	r.Delete("/api/orders/{id}", h.apiCancelOrder)

	// ── Direct sales ──────────────────────────────────────────────────────────
	r.Post("/api/sales", h.apiDirectSale)

	// ── Suppliers ─────────────────────────────────────────────────────────────
	r.Get("/api/suppliers", h.apiListSuppliers)
	r.Post("/api/suppliers", h.apiAddSupplier)

	// ── Reports ───────────────────────────────────────────────────────────────
	r.Get("/api/reports/dashboard", h.apiDashboard)
	r.Get("/api/reports/low-stock", h.apiLowStock)
	r.Get("/api/reports/sales", h.apiSalesReport)
	r.Get("/api/reports/slow-moving", h.apiSlowMoving)
	r.Get("/api/reconciliation", h.apiReconciliation)

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
