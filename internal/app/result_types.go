package app

import "inventory-ledger/internal/core"

// ItemResult is returned by single-item operations.
type ItemResult struct {
	Item *core.InventoryItem
}

// ItemListResult is returned by item listings.
type ItemListResult struct {
	Items []core.InventoryItem
}

// ItemHistoryResult is returned by GetItemHistory.
type ItemHistoryResult struct {
	ItemID  string
	Entries []core.StockHistoryEntry
}

// OrderResult is returned by order operations.
type OrderResult struct {
	Order *core.Order
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.Order
}

// SupplierResult is returned by AddSupplier.
type SupplierResult struct {
	Supplier *core.Supplier
}

// SupplierListResult is returned by ListSuppliers.
type SupplierListResult struct {
	Suppliers []core.Supplier
}

// ReconciliationResult is returned by CheckReconciliation. Clean is true
// when every item's quantity equals the sum of its history entries.
type ReconciliationResult struct {
	Violations []core.InvariantViolationError
	Clean      bool
}
