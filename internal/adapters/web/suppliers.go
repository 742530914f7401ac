package web

import (
	"net/http"

	"inventory-ledger/internal/app"
)

// apiListSuppliers handles GET /api/suppliers.
func (h *Handler) apiListSuppliers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListSuppliers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Suppliers)
}

// apiAddSupplier handles POST /api/suppliers.
// Body: { name, contact?, phone? }
func (h *Handler) apiAddSupplier(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    string `json:"name"`
		Contact string `json:"contact"`
		Phone   string `json:"phone"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Name == "" {
		writeError(w, r, "name is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.AddSupplier(r.Context(), app.AddSupplierRequest{
		Name:    body.Name,
		Contact: body.Contact,
		Phone:   body.Phone,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Supplier)
}
