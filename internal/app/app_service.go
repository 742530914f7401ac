package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory-ledger/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

type appService struct {
	store     *core.LedgerStore
	items     core.ItemService
	orders    core.OrderService
	suppliers core.SupplierService
	reporting core.ReportingService
	engine    core.SettlementService
	scanner   *core.Scanner
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	pool *pgxpool.Pool,
	items core.ItemService,
	orders core.OrderService,
	suppliers core.SupplierService,
	reporting core.ReportingService,
	engine core.SettlementService,
) ApplicationService {
	return &appService{
		store:     core.NewLedgerStore(pool),
		items:     items,
		orders:    orders,
		suppliers: suppliers,
		reporting: reporting,
		engine:    engine,
		scanner:   core.NewScanner(items),
	}
}

// ── Items ─────────────────────────────────────────────────────────────────────

// CreateItem registers a new inventory item with its initial stock entry.
func (s *appService) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResult, error) {
	item, err := s.items.CreateItem(ctx, &core.InventoryItem{
		ID:            req.ID,
		Name:          req.Name,
		Description:   req.Description,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		Supplier:      req.Supplier,
		MinStockAlert: req.MinStockAlert,
	})
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: item}, nil
}

// UpdateItemDetails edits an item's descriptive fields.
func (s *appService) UpdateItemDetails(ctx context.Context, id string, req UpdateItemRequest) (*ItemResult, error) {
	item, err := s.items.UpdateItemDetails(ctx, id, core.ItemDetailsUpdate{
		Name:          req.Name,
		Description:   req.Description,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		Supplier:      req.Supplier,
		MinStockAlert: req.MinStockAlert,
	})
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: item}, nil
}

// AdjustItemQuantity applies a signed manual stock correction.
func (s *appService) AdjustItemQuantity(ctx context.Context, req AdjustQuantityRequest) (*ItemResult, error) {
	item, err := s.items.AdjustQuantity(ctx, req.ItemID, req.Delta, req.Reason)
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: item}, nil
}

// GetItem returns a single item by id.
func (s *appService) GetItem(ctx context.Context, id string) (*ItemResult, error) {
	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: item}, nil
}

// ListItems returns the whole catalog.
func (s *appService) ListItems(ctx context.Context) (*ItemListResult, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return &ItemListResult{Items: items}, nil
}

// GetItemHistory returns an item's audit entries, newest first.
func (s *appService) GetItemHistory(ctx context.Context, id string) (*ItemHistoryResult, error) {
	entries, err := s.items.ItemHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ItemHistoryResult{ItemID: id, Entries: entries}, nil
}

// ScanBarcode classifies a scanned code against the catalog.
func (s *appService) ScanBarcode(ctx context.Context, barcode string) (*core.ScanResult, error) {
	res, err := s.scanner.Lookup(ctx, barcode)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ── Orders ────────────────────────────────────────────────────────────────────

// CreateOrder records a new processing order.
func (s *appService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	lines := make([]core.OrderLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.OrderLineInput{ItemID: l.ItemID, Quantity: l.Quantity}
	}
	order, err := s.orders.CreateOrder(ctx, req.Title, lines)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

// GetOrder returns a single order with its lines.
func (s *appService) GetOrder(ctx context.Context, id string) (*OrderResult, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

// ListOrders returns orders newest first, optionally filtered by status.
func (s *appService) ListOrders(ctx context.Context, status *string) (*OrderListResult, error) {
	var filter *core.OrderStatus
	if status != nil {
		st := core.OrderStatus(*status)
		filter = &st
	}
	orders, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders}, nil
}

// CompleteOrder settles the order through the settlement engine.
func (s *appService) CompleteOrder(ctx context.Context, id string) (*core.SettlementResult, error) {
	return s.orders.CompleteOrder(ctx, id)
}

// CancelOrder deletes a processing order.
func (s *appService) CancelOrder(ctx context.Context, id string) error {
	return s.orders.CancelOrder(ctx, id)
}

// ProcessDirectSale settles a counter sale.
func (s *appService) ProcessDirectSale(ctx context.Context, req DirectSaleRequest) (*core.SettlementResult, error) {
	if len(req.Lines) == 0 {
		return nil, errors.New("sale requires at least one line")
	}
	lines := make([]core.SettlementLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.SettlementLine{ItemID: l.ItemID, Quantity: l.Quantity}
	}
	return s.engine.ProcessDirectSale(ctx, lines)
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

// AddSupplier registers a supplier in the directory.
func (s *appService) AddSupplier(ctx context.Context, req AddSupplierRequest) (*SupplierResult, error) {
	sup, err := s.suppliers.AddSupplier(ctx, core.SupplierInput{
		Name:    req.Name,
		Contact: req.Contact,
		Phone:   req.Phone,
	})
	if err != nil {
		return nil, err
	}
	return &SupplierResult{Supplier: sup}, nil
}

// ListSuppliers returns all suppliers.
func (s *appService) ListSuppliers(ctx context.Context) (*SupplierListResult, error) {
	sups, err := s.suppliers.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	return &SupplierListResult{Suppliers: sups}, nil
}

// ── Reporting ─────────────────────────────────────────────────────────────────

// GetDashboard returns the at-a-glance inventory metrics.
func (s *appService) GetDashboard(ctx context.Context) (*core.DashboardMetrics, error) {
	return s.reporting.GetDashboard(ctx)
}

// GetLowStockItems lists items at or below their alert threshold.
func (s *appService) GetLowStockItems(ctx context.Context) (*ItemListResult, error) {
	items, err := s.reporting.GetLowStockItems(ctx)
	if err != nil {
		return nil, err
	}
	return &ItemListResult{Items: items}, nil
}

// GetSalesReport aggregates completed orders over a date window. Days are
// UTC calendar days; the To bound covers the whole named day.
func (s *appService) GetSalesReport(ctx context.Context, req SalesReportRequest) (*core.SalesReport, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	from := today.AddDate(0, 0, -30)
	if req.From != "" {
		t, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return nil, fmt.Errorf("invalid from date %q: %w", req.From, err)
		}
		from = t
	}

	to := today.AddDate(0, 0, 1)
	if req.To != "" {
		t, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return nil, fmt.Errorf("invalid to date %q: %w", req.To, err)
		}
		to = t.AddDate(0, 0, 1)
	}

	return s.reporting.GetSalesReport(ctx, from, to)
}

// GetSlowMovingItems lists items with no recorded sale in the last days.
func (s *appService) GetSlowMovingItems(ctx context.Context, days int) (*ItemListResult, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	items, err := s.reporting.GetSlowMovingItems(ctx, since)
	if err != nil {
		return nil, err
	}
	return &ItemListResult{Items: items}, nil
}

// ── Reconciliation ────────────────────────────────────────────────────────────

// CheckReconciliation sweeps every item against its history sum.
func (s *appService) CheckReconciliation(ctx context.Context) (*ReconciliationResult, error) {
	violations, err := s.store.CheckReconciliation(ctx)
	if err != nil {
		return nil, err
	}
	return &ReconciliationResult{Violations: violations, Clean: len(violations) == 0}, nil
}
