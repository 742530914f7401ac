package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// DashboardMetrics is the at-a-glance snapshot of the ledger: catalog size,
// the purchase value tied up in stock, and how much of it is running low.
type DashboardMetrics struct {
	TotalItems           int             `json:"total_items"`
	TotalInventoryValue  decimal.Decimal `json:"total_inventory_value"`
	LowStockCount        int             `json:"low_stock_count"`
	ProcessingOrderCount int             `json:"processing_order_count"`
	SupplierCount        int             `json:"supplier_count"`
}

// TopItem ranks one item within a sales report window.
type TopItem struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	UnitsSold int             `json:"units_sold"`
	Profit    decimal.Decimal `json:"profit"`
}

// DailyPoint is one day's revenue and profit inside a report window.
type DailyPoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

// SalesReport aggregates completed orders with completed_at in [From, To).
// All money figures come from the prices snapshotted at order creation, so
// the report stays stable even after catalog price edits:
//   - TotalRevenue: sum of order totals
//   - TotalCOGS:    sum of purchase_price × quantity over order lines
//   - GrossProfit:  revenue − COGS
//   - Profit per item: (sale_price − purchase_price) × quantity
type SalesReport struct {
	From            time.Time       `json:"from"`
	To              time.Time       `json:"to"`
	OrderCount      int             `json:"order_count"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalCOGS       decimal.Decimal `json:"total_cogs"`
	GrossProfit     decimal.Decimal `json:"gross_profit"`
	ProfitMarginPct decimal.Decimal `json:"profit_margin_pct"`
	AvgOrderValue   decimal.Decimal `json:"avg_order_value"`
	TopByUnits      []TopItem       `json:"top_by_units"`
	TopByProfit     []TopItem       `json:"top_by_profit"`
	Daily           []DailyPoint    `json:"daily"`
}

// topItemLimit caps the ranked lists in a sales report.
const topItemLimit = 5

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only analytics over the ledger and the
// order history. Nothing here writes; settlement correctness never depends
// on this service.
type ReportingService interface {
	GetDashboard(ctx context.Context) (*DashboardMetrics, error)

	// GetLowStockItems lists items whose threshold is set and whose quantity
	// is at or below it, zero included. This is the standing dashboard view;
	// the settlement alert rule is narrower and excludes zero.
	GetLowStockItems(ctx context.Context) ([]InventoryItem, error)

	// GetSalesReport aggregates completed orders in [from, to).
	GetSalesReport(ctx context.Context, from, to time.Time) (*SalesReport, error)

	// GetSlowMovingItems lists items with no sale recorded in the stock
	// history since the given time, never-sold items included.
	GetSlowMovingItems(ctx context.Context, since time.Time) ([]InventoryItem, error)
}

// ── Implementation ────────────────────────────────────────────────────────────

type reportingService struct {
	pool *pgxpool.Pool
}

// NewReportingService constructs a ReportingService backed by the given pool.
func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

// ── GetDashboard ──────────────────────────────────────────────────────────────

func (s *reportingService) GetDashboard(ctx context.Context) (*DashboardMetrics, error) {
	const q = `
		SELECT
		    (SELECT COUNT(*) FROM inventory_items),
		    (SELECT COALESCE(SUM(quantity * purchase_price), 0) FROM inventory_items),
		    (SELECT COUNT(*) FROM inventory_items WHERE min_stock_alert > 0 AND quantity <= min_stock_alert),
		    (SELECT COUNT(*) FROM orders WHERE status = 'processing'),
		    (SELECT COUNT(*) FROM suppliers)`

	m := &DashboardMetrics{}
	if err := s.pool.QueryRow(ctx, q).Scan(
		&m.TotalItems, &m.TotalInventoryValue, &m.LowStockCount,
		&m.ProcessingOrderCount, &m.SupplierCount,
	); err != nil {
		return nil, fmt.Errorf("failed to query dashboard metrics: %w", err)
	}
	return m, nil
}

// ── GetLowStockItems ──────────────────────────────────────────────────────────

func (s *reportingService) GetLowStockItems(ctx context.Context) ([]InventoryItem, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+itemColumns+` FROM inventory_items
		WHERE min_stock_alert > 0 AND quantity <= min_stock_alert
		ORDER BY quantity, lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock items: %w", err)
	}
	defer rows.Close()

	var items []InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan low stock item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("low stock iteration error: %w", err)
	}
	return items, nil
}

// ── GetSalesReport ────────────────────────────────────────────────────────────

func (s *reportingService) GetSalesReport(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	report := &SalesReport{From: from, To: to}

	if err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(price), 0)
		FROM orders
		WHERE status = 'completed' AND completed_at >= $1 AND completed_at < $2`,
		from, to,
	).Scan(&report.OrderCount, &report.TotalRevenue); err != nil {
		return nil, fmt.Errorf("failed to query sales totals: %w", err)
	}

	if err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(l.purchase_price * l.quantity), 0)
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE o.status = 'completed' AND o.completed_at >= $1 AND o.completed_at < $2`,
		from, to,
	).Scan(&report.TotalCOGS); err != nil {
		return nil, fmt.Errorf("failed to query cost of goods sold: %w", err)
	}

	report.GrossProfit = report.TotalRevenue.Sub(report.TotalCOGS)
	if !report.TotalRevenue.IsZero() {
		report.ProfitMarginPct = report.GrossProfit.Div(report.TotalRevenue).Mul(decimal.NewFromInt(100))
	}
	if report.OrderCount > 0 {
		report.AvgOrderValue = report.TotalRevenue.Div(decimal.NewFromInt(int64(report.OrderCount)))
	}

	top, err := s.queryTopItems(ctx, from, to)
	if err != nil {
		return nil, err
	}
	report.TopByUnits = rankTopItems(top, func(a, b TopItem) bool {
		return a.UnitsSold > b.UnitsSold
	})
	report.TopByProfit = rankTopItems(top, func(a, b TopItem) bool {
		return a.Profit.GreaterThan(b.Profit)
	})

	report.Daily, err = s.queryDailyPoints(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// queryTopItems aggregates units and snapshot profit per item over the
// completed orders in the window.
func (s *reportingService) queryTopItems(ctx context.Context, from, to time.Time) ([]TopItem, error) {
	const q = `
		SELECT l.item_id, l.name,
		       SUM(l.quantity)::int AS units,
		       SUM((l.sale_price - l.purchase_price) * l.quantity) AS profit
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE o.status = 'completed' AND o.completed_at >= $1 AND o.completed_at < $2
		GROUP BY l.item_id, l.name`

	rows, err := s.pool.Query(ctx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query top items: %w", err)
	}
	defer rows.Close()

	var items []TopItem
	for rows.Next() {
		var t TopItem
		if err := rows.Scan(&t.ItemID, &t.Name, &t.UnitsSold, &t.Profit); err != nil {
			return nil, fmt.Errorf("failed to scan top item: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top items iteration error: %w", err)
	}
	return items, nil
}

// rankTopItems returns the first topItemLimit entries under less, without
// disturbing the input slice. Ties break by name for stable output.
func rankTopItems(items []TopItem, less func(a, b TopItem) bool) []TopItem {
	ranked := make([]TopItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		if less(ranked[i], ranked[j]) {
			return true
		}
		if less(ranked[j], ranked[i]) {
			return false
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > topItemLimit {
		ranked = ranked[:topItemLimit]
	}
	return ranked
}

// queryDailyPoints groups the window's completed orders by calendar day.
func (s *reportingService) queryDailyPoints(ctx context.Context, from, to time.Time) ([]DailyPoint, error) {
	const q = `
		SELECT o.completed_at::date::text AS day,
		       COALESCE(SUM(o.price), 0)  AS revenue,
		       COALESCE(SUM(c.cogs), 0)   AS cogs
		FROM orders o
		LEFT JOIN (
		    SELECT order_id, SUM(purchase_price * quantity) AS cogs
		    FROM order_lines
		    GROUP BY order_id
		) c ON c.order_id = o.id
		WHERE o.status = 'completed' AND o.completed_at >= $1 AND o.completed_at < $2
		GROUP BY day
		ORDER BY day`

	rows, err := s.pool.Query(ctx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily sales: %w", err)
	}
	defer rows.Close()

	var points []DailyPoint
	for rows.Next() {
		var p DailyPoint
		var cogs decimal.Decimal
		if err := rows.Scan(&p.Date, &p.Revenue, &cogs); err != nil {
			return nil, fmt.Errorf("failed to scan daily point: %w", err)
		}
		p.Profit = p.Revenue.Sub(cogs)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily sales iteration error: %w", err)
	}
	return points, nil
}

// ── GetSlowMovingItems ────────────────────────────────────────────────────────

func (s *reportingService) GetSlowMovingItems(ctx context.Context, since time.Time) ([]InventoryItem, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+itemColumns+` FROM inventory_items i
		WHERE NOT EXISTS (
		    SELECT 1 FROM stock_history h
		    WHERE h.item_id = i.id
		      AND h.entry_type IN ('order_sale', 'direct_sale')
		      AND h.created_at >= $1
		)
		ORDER BY lower(i.name)`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query slow moving items: %w", err)
	}
	defer rows.Close()

	var items []InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slow moving item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("slow moving iteration error: %w", err)
	}
	return items, nil
}
