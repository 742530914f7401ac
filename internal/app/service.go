package app

import (
	"context"

	"inventory-ledger/internal/core"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// CreateItem registers a new inventory item and seeds its audit history
	// with an initial stock entry.
	CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResult, error)

	// UpdateItemDetails edits an item's descriptive fields. Quantity cannot
	// be changed here; use AdjustItemQuantity so the audit trail stays whole.
	UpdateItemDetails(ctx context.Context, id string, req UpdateItemRequest) (*ItemResult, error)

	// AdjustItemQuantity applies a signed manual stock correction and
	// records it in the item's history.
	AdjustItemQuantity(ctx context.Context, req AdjustQuantityRequest) (*ItemResult, error)

	// GetItem returns a single item by id (the barcode).
	GetItem(ctx context.Context, id string) (*ItemResult, error)

	// ListItems returns the whole catalog, ordered by name.
	ListItems(ctx context.Context) (*ItemListResult, error)

	// GetItemHistory returns an item's audit entries, newest first.
	GetItemHistory(ctx context.Context, id string) (*ItemHistoryResult, error)

	// ScanBarcode classifies a scanned code: found with the matching item,
	// or not found. Unknown codes are a normal outcome, not an error.
	ScanBarcode(ctx context.Context, barcode string) (*core.ScanResult, error)

	// CreateOrder records a new processing order with prices snapshotted
	// from the current catalog. An empty title is auto-numbered.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)

	// GetOrder returns a single order with its lines.
	GetOrder(ctx context.Context, id string) (*OrderResult, error)

	// ListOrders returns orders newest first, optionally filtered by status
	// ("processing" or "completed"). Pass nil for all.
	ListOrders(ctx context.Context, status *string) (*OrderListResult, error)

	// CompleteOrder settles the order atomically: stock decrements, audit
	// entries, and the completed transition commit together or not at all.
	// Low-stock alerts raised by the settlement are in the result.
	CompleteOrder(ctx context.Context, id string) (*core.SettlementResult, error)

	// CancelOrder deletes a processing order. Completed orders stay.
	CancelOrder(ctx context.Context, id string) error

	// ProcessDirectSale settles a counter sale with no pre-existing order.
	ProcessDirectSale(ctx context.Context, req DirectSaleRequest) (*core.SettlementResult, error)

	// AddSupplier registers a supplier in the directory.
	AddSupplier(ctx context.Context, req AddSupplierRequest) (*SupplierResult, error)

	// ListSuppliers returns all suppliers, ordered by name.
	ListSuppliers(ctx context.Context) (*SupplierListResult, error)

	// GetDashboard returns the at-a-glance inventory metrics.
	GetDashboard(ctx context.Context) (*core.DashboardMetrics, error)

	// GetLowStockItems lists items at or below their alert threshold.
	GetLowStockItems(ctx context.Context) (*ItemListResult, error)

	// GetSalesReport aggregates completed orders over a date window.
	// Empty bounds default to the last 30 days.
	GetSalesReport(ctx context.Context, req SalesReportRequest) (*core.SalesReport, error)

	// GetSlowMovingItems lists items with no recorded sale in the last
	// given number of days (default 30 when days <= 0).
	GetSlowMovingItems(ctx context.Context, days int) (*ItemListResult, error)

	// CheckReconciliation sweeps every item and compares its quantity
	// against the sum of its history entries. A violation means some write
	// bypassed the audit trail.
	CheckReconciliation(ctx context.Context) (*ReconciliationResult, error)
}
