package app

import "github.com/shopspring/decimal"

// CreateItemRequest is the input for registering a new inventory item.
// ID is the barcode and must be unique across the catalog.
type CreateItemRequest struct {
	ID            string
	Name          string
	Description   string
	Quantity      int
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	Supplier      string
	MinStockAlert int
}

// UpdateItemRequest carries new values for an item's descriptive fields.
// Nil fields are left unchanged.
type UpdateItemRequest struct {
	Name          *string
	Description   *string
	PurchasePrice *decimal.Decimal
	SalePrice     *decimal.Decimal
	Supplier      *string
	MinStockAlert *int
}

// AdjustQuantityRequest is the input for a manual stock correction.
type AdjustQuantityRequest struct {
	ItemID string
	Delta  int
	Reason string // empty means "Item updated manually."
}

// CreateOrderRequest is the input for creating a new order.
type CreateOrderRequest struct {
	Title string // empty means auto-numbered
	Lines []OrderLineInput
}

// OrderLineInput is a single line within a CreateOrderRequest.
type OrderLineInput struct {
	ItemID   string
	Quantity int
}

// DirectSaleRequest is the input for settling a counter sale.
type DirectSaleRequest struct {
	Lines []SaleLineInput
}

// SaleLineInput is a single line within a DirectSaleRequest.
type SaleLineInput struct {
	ItemID   string
	Quantity int
}

// AddSupplierRequest is the input for registering a supplier.
type AddSupplierRequest struct {
	Name    string
	Contact string
	Phone   string
}

// SalesReportRequest bounds a sales report. Dates are YYYY-MM-DD in UTC;
// To is inclusive by day. Empty bounds default to the last 30 days.
type SalesReportRequest struct {
	From string
	To   string
}
