package web

import (
	"fmt"
	"net/http"

	"inventory-ledger/internal/app"

	"github.com/go-chi/chi/v5"
)

// apiListOrders handles GET /api/orders. An optional ?status= query
// parameter narrows the list to "processing" or "completed".
func (h *Handler) apiListOrders(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")
	var statusPtr *string
	if statusFilter != "" {
		statusPtr = &statusFilter
	}
	result, err := h.svc.ListOrders(r.Context(), statusPtr)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Orders)
}

// apiGetOrder handles GET /api/orders/{id}.
func (h *Handler) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// apiCreateOrder handles POST /api/orders.
// Body: { title?, lines: [{item_id, quantity}] }
// Line prices are snapshotted from the catalog at creation time, so the
// request carries only item references and unit counts.
func (h *Handler) apiCreateOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
		Lines []struct {
			ItemID   string `json:"item_id"`
			Quantity int    `json:"quantity"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if len(body.Lines) == 0 {
		writeError(w, r, "at least one line is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	req := app.CreateOrderRequest{Title: body.Title}
	for i, l := range body.Lines {
		if l.ItemID == "" {
			writeError(w, r, fmt.Sprintf("line %d: item_id is required", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		if l.Quantity <= 0 {
			writeError(w, r, fmt.Sprintf("line %d: invalid quantity", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.Lines = append(req.Lines, app.OrderLineInput{
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
		})
	}

	result, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Order)
}

// apiCompleteOrder handles POST /api/orders/{id}/complete. On success the
// response carries the settlement summary, including any low-stock alerts
// the decrements triggered.
func (h *Handler) apiCompleteOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CompleteOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCancelOrder handles DELETE /api/orders/{id}. Only processing orders
// can be cancelled; a completed order is a settled fact.
func (h *Handler) apiCancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CancelOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiDirectSale handles POST /api/sales, a point-of-sale checkout with no
// standing order. Body: { lines: [{item_id, quantity}] }
func (h *Handler) apiDirectSale(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Lines []struct {
			ItemID   string `json:"item_id"`
			Quantity int    `json:"quantity"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if len(body.Lines) == 0 {
		writeError(w, r, "at least one line is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	req := app.DirectSaleRequest{}
	for i, l := range body.Lines {
		if l.ItemID == "" {
			writeError(w, r, fmt.Sprintf("line %d: item_id is required", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		if l.Quantity <= 0 {
			writeError(w, r, fmt.Sprintf("line %d: invalid quantity", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.Lines = append(req.Lines, app.SaleLineInput{
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
		})
	}

	result, err := h.svc.ProcessDirectSale(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}
