package web

import (
	"net/http"

	"inventory-ledger/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// apiListItems handles GET /api/items.
func (h *Handler) apiListItems(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Items)
}

// apiGetItem handles GET /api/items/{id}.
func (h *Handler) apiGetItem(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Item)
}

// apiCreateItem handles POST /api/items.
// Body: { id, name, description?, quantity, purchase_price?, sale_price?, supplier?, min_stock_alert? }
// Prices are decimal strings; empty means zero.
func (h *Handler) apiCreateItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Description   string `json:"description"`
		Quantity      int    `json:"quantity"`
		PurchasePrice string `json:"purchase_price"`
		SalePrice     string `json:"sale_price"`
		Supplier      string `json:"supplier"`
		MinStockAlert int    `json:"min_stock_alert"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.ID == "" || body.Name == "" {
		writeError(w, r, "id and name are required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	purchase, err := parsePrice(body.PurchasePrice)
	if err != nil {
		writeError(w, r, "invalid purchase_price", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	sale, err := parsePrice(body.SalePrice)
	if err != nil {
		writeError(w, r, "invalid sale_price", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CreateItem(r.Context(), app.CreateItemRequest{
		ID:            body.ID,
		Name:          body.Name,
		Description:   body.Description,
		Quantity:      body.Quantity,
		PurchasePrice: purchase,
		SalePrice:     sale,
		Supplier:      body.Supplier,
		MinStockAlert: body.MinStockAlert,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Item)
}

// apiUpdateItem handles PATCH /api/items/{id}.
// Body: any of { name, description, purchase_price, sale_price, supplier, min_stock_alert }.
// Absent fields are left unchanged. Quantity is not editable here; use the
// adjust endpoint so the change lands in the audit history.
func (h *Handler) apiUpdateItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name          *string `json:"name"`
		Description   *string `json:"description"`
		PurchasePrice *string `json:"purchase_price"`
		SalePrice     *string `json:"sale_price"`
		Supplier      *string `json:"supplier"`
		MinStockAlert *int    `json:"min_stock_alert"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	req := app.UpdateItemRequest{
		Name:          body.Name,
		Description:   body.Description,
		Supplier:      body.Supplier,
		MinStockAlert: body.MinStockAlert,
	}
	if body.PurchasePrice != nil {
		p, err := decimal.NewFromString(*body.PurchasePrice)
		if err != nil {
			writeError(w, r, "invalid purchase_price", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.PurchasePrice = &p
	}
	if body.SalePrice != nil {
		p, err := decimal.NewFromString(*body.SalePrice)
		if err != nil {
			writeError(w, r, "invalid sale_price", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.SalePrice = &p
	}

	result, err := h.svc.UpdateItemDetails(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Item)
}

// apiAdjustQuantity handles POST /api/items/{id}/adjust.
// Body: { delta, reason? }. Delta is a signed unit count.
func (h *Handler) apiAdjustQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Delta  int    `json:"delta"`
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Delta == 0 {
		writeError(w, r, "delta must be non-zero", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.AdjustItemQuantity(r.Context(), app.AdjustQuantityRequest{
		ItemID: chi.URLParam(r, "id"),
		Delta:  body.Delta,
		Reason: body.Reason,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Item)
}

// apiItemHistory handles GET /api/items/{id}/history.
func (h *Handler) apiItemHistory(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetItemHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Entries)
}

// apiScanBarcode handles GET /api/scan/{barcode}.
// An unknown barcode is a 200 with status "not_found", not a 404.
func (h *Handler) apiScanBarcode(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ScanBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// parsePrice converts an optional money string; empty means zero.
func parsePrice(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
