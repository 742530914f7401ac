package core_test

import (
	"context"
	"testing"
	"time"

	"inventory-ledger/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// seedCompletedOrder inserts a completed order with a pinned completed_at so
// report windows can be asserted exactly. Line prices are taken as given; the
// order total is derived from them like the snapshot path would.
func seedCompletedOrder(t *testing.T, pool *pgxpool.Pool, title string, completedAt time.Time, lines []core.OrderLine) {
	t.Helper()
	ctx := context.Background()

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.SalePrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	orderID := uuid.NewString()
	_, err := pool.Exec(ctx, `
		INSERT INTO orders (id, title, status, price, completed_at)
		VALUES ($1, $2, 'completed', $3, $4)
	`, orderID, title, total, completedAt)
	if err != nil {
		t.Fatalf("Failed to seed completed order: %v", err)
	}
	for _, l := range lines {
		_, err := pool.Exec(ctx, `
			INSERT INTO order_lines (order_id, item_id, name, quantity, purchase_price, sale_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, orderID, l.ItemID, l.Name, l.Quantity, l.PurchasePrice, l.SalePrice)
		if err != nil {
			t.Fatalf("Failed to seed order line: %v", err)
		}
	}
}

func TestReporting_Dashboard(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	seedProcessingOrder(t, pool, "Open order", []core.SettlementLine{{ItemID: "COLA", Quantity: 1}})
	if _, err := pool.Exec(ctx,
		"INSERT INTO suppliers (name, contact, phone) VALUES ('Northside Beverages', 'Laura Campos', '555-0134')"); err != nil {
		t.Fatalf("Failed to seed supplier: %v", err)
	}

	m, err := core.NewReportingService(pool).GetDashboard(ctx)
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}

	if m.TotalItems != 3 {
		t.Errorf("Expected 3 items, got %d", m.TotalItems)
	}
	// 10×9.50 + 5×7.00 + 2×18.00 = 166.00 at purchase prices
	if !m.TotalInventoryValue.Equal(decimal.NewFromFloat(166.00)) {
		t.Errorf("Expected inventory value 166.00, got %s", m.TotalInventoryValue)
	}
	// Only MILK (2 of threshold 4) is low; CHIP has alerting disabled
	if m.LowStockCount != 1 {
		t.Errorf("Expected 1 low stock item, got %d", m.LowStockCount)
	}
	if m.ProcessingOrderCount != 1 {
		t.Errorf("Expected 1 processing order, got %d", m.ProcessingOrderCount)
	}
	if m.SupplierCount != 1 {
		t.Errorf("Expected 1 supplier, got %d", m.SupplierCount)
	}
}

func TestReporting_LowStockItems(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	// A sold-out item with a threshold belongs on this view, unlike the
	// settlement alert rule which goes silent at zero
	_, err := pool.Exec(ctx, `
		INSERT INTO inventory_items (id, name, quantity, min_stock_alert) VALUES ('ZERO', 'Empty Shelf Bars', 0, 5);
		INSERT INTO stock_history (item_id, entry_type, quantity_change, details) VALUES ('ZERO', 'initial_stock', 0, 'Item created in the system.');
	`)
	if err != nil {
		t.Fatalf("Failed to seed sold-out item: %v", err)
	}

	items, err := core.NewReportingService(pool).GetLowStockItems(ctx)
	if err != nil {
		t.Fatalf("GetLowStockItems failed: %v", err)
	}

	// Emptiest first: ZERO (0/5), then MILK (2/4). COLA is comfortably
	// stocked and CHIP has no threshold.
	if len(items) != 2 {
		t.Fatalf("Expected 2 low stock items, got %d", len(items))
	}
	if items[0].ID != "ZERO" || items[1].ID != "MILK" {
		t.Errorf("Unexpected low stock order: %s, %s", items[0].ID, items[1].ID)
	}
}

func TestReporting_SalesReport(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	reports := core.NewReportingService(pool)

	// Noon timestamps keep the calendar-day grouping stable across server
	// timezone settings.
	day1 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	cola := func(qty int) core.OrderLine {
		return core.OrderLine{ItemID: "COLA", Name: "Cola 600ml", Quantity: qty,
			PurchasePrice: decimal.NewFromFloat(9.50), SalePrice: decimal.NewFromFloat(15.00)}
	}
	seedCompletedOrder(t, pool, "Day one A", day1, []core.OrderLine{cola(4)})
	seedCompletedOrder(t, pool, "Day one B", day1, []core.OrderLine{
		{ItemID: "CHIP", Name: "Corn Chips 62g", Quantity: 2,
			PurchasePrice: decimal.NewFromFloat(7.00), SalePrice: decimal.NewFromFloat(12.00)},
	})
	seedCompletedOrder(t, pool, "Day two", day2, []core.OrderLine{
		cola(1),
		{ItemID: "MILK", Name: "Whole Milk 1L", Quantity: 2,
			PurchasePrice: decimal.NewFromFloat(18.00), SalePrice: decimal.NewFromFloat(24.50)},
	})
	// Falls outside the window below and must not count anywhere
	seedCompletedOrder(t, pool, "Out of window", day1.AddDate(0, 0, 10), []core.OrderLine{cola(5)})

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	report, err := reports.GetSalesReport(ctx, from, from.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("GetSalesReport failed: %v", err)
	}

	// 1. Window totals: revenue 60+24+64, COGS 38+14+45.50
	if report.OrderCount != 3 {
		t.Errorf("Expected 3 orders, got %d", report.OrderCount)
	}
	if !report.TotalRevenue.Equal(decimal.NewFromFloat(148.00)) {
		t.Errorf("Expected revenue 148.00, got %s", report.TotalRevenue)
	}
	if !report.TotalCOGS.Equal(decimal.NewFromFloat(97.50)) {
		t.Errorf("Expected COGS 97.50, got %s", report.TotalCOGS)
	}
	if !report.GrossProfit.Equal(decimal.NewFromFloat(50.50)) {
		t.Errorf("Expected gross profit 50.50, got %s", report.GrossProfit)
	}
	if !report.ProfitMarginPct.Round(2).Equal(decimal.NewFromFloat(34.12)) {
		t.Errorf("Expected margin 34.12%%, got %s", report.ProfitMarginPct)
	}
	if !report.AvgOrderValue.Round(2).Equal(decimal.NewFromFloat(49.33)) {
		t.Errorf("Expected avg order 49.33, got %s", report.AvgOrderValue)
	}

	// 2. Rankings. By units: COLA 5, then the 2-unit tie broken by name.
	// By profit: COLA 27.50, MILK 13.00, CHIP 10.00.
	if len(report.TopByUnits) != 3 {
		t.Fatalf("Expected 3 ranked items, got %d", len(report.TopByUnits))
	}
	if report.TopByUnits[0].ItemID != "COLA" || report.TopByUnits[0].UnitsSold != 5 {
		t.Errorf("Unexpected top by units: %+v", report.TopByUnits[0])
	}
	if report.TopByUnits[1].ItemID != "CHIP" || report.TopByUnits[2].ItemID != "MILK" {
		t.Errorf("Expected name tie-break CHIP before MILK, got %s, %s",
			report.TopByUnits[1].ItemID, report.TopByUnits[2].ItemID)
	}
	if report.TopByProfit[0].ItemID != "COLA" || !report.TopByProfit[0].Profit.Equal(decimal.NewFromFloat(27.50)) {
		t.Errorf("Unexpected top by profit: %+v", report.TopByProfit[0])
	}
	if report.TopByProfit[1].ItemID != "MILK" || report.TopByProfit[2].ItemID != "CHIP" {
		t.Errorf("Expected profit order MILK before CHIP, got %s, %s",
			report.TopByProfit[1].ItemID, report.TopByProfit[2].ItemID)
	}

	// 3. Daily series, ascending
	if len(report.Daily) != 2 {
		t.Fatalf("Expected 2 daily points, got %d", len(report.Daily))
	}
	d := report.Daily[0]
	if d.Date != "2026-03-10" || !d.Revenue.Equal(decimal.NewFromFloat(84.00)) || !d.Profit.Equal(decimal.NewFromFloat(32.00)) {
		t.Errorf("Unexpected first day: %+v", d)
	}
	d = report.Daily[1]
	if d.Date != "2026-03-11" || !d.Revenue.Equal(decimal.NewFromFloat(64.00)) || !d.Profit.Equal(decimal.NewFromFloat(18.50)) {
		t.Errorf("Unexpected second day: %+v", d)
	}
}

func TestReporting_SalesReportEmptyWindow(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	report, err := core.NewReportingService(pool).GetSalesReport(context.Background(), from, from.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("GetSalesReport failed: %v", err)
	}
	if report.OrderCount != 0 || !report.TotalRevenue.IsZero() || !report.GrossProfit.IsZero() {
		t.Errorf("Expected empty report, got %+v", report)
	}
	if !report.ProfitMarginPct.IsZero() || !report.AvgOrderValue.IsZero() {
		t.Errorf("Expected zero ratios for an empty window, got margin %s, avg %s",
			report.ProfitMarginPct, report.AvgOrderValue)
	}
	if len(report.TopByUnits) != 0 || len(report.Daily) != 0 {
		t.Errorf("Expected no rankings or daily points, got %d and %d",
			len(report.TopByUnits), len(report.Daily))
	}
}

func TestReporting_SlowMovingItems(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	// COLA sold recently; CHIP sold long ago; MILK never sold
	engine := core.NewSettlementService(core.NewLedgerStore(pool), core.DefaultRetryPolicy(), &core.CollectorSink{})
	if _, err := engine.ProcessDirectSale(ctx, []core.SettlementLine{{ItemID: "COLA", Quantity: 1}}); err != nil {
		t.Fatalf("ProcessDirectSale failed: %v", err)
	}
	_, err := pool.Exec(ctx, `
		UPDATE inventory_items SET quantity = quantity - 1 WHERE id = 'CHIP';
		INSERT INTO stock_history (item_id, entry_type, quantity_change, details, created_at)
		VALUES ('CHIP', 'direct_sale', -1, 'Sale ID: backdated', now() - interval '40 days');
	`)
	if err != nil {
		t.Fatalf("Failed to seed old sale: %v", err)
	}

	items, err := core.NewReportingService(pool).GetSlowMovingItems(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("GetSlowMovingItems failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 slow movers, got %d", len(items))
	}
	if items[0].ID != "CHIP" || items[1].ID != "MILK" {
		t.Errorf("Expected CHIP and MILK, got %s, %s", items[0].ID, items[1].ID)
	}
}
