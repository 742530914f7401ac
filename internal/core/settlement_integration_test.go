package core_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"inventory-ledger/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed test DB. The initial_stock rows are derived from the item
	// rows themselves so the ledger starts reconciled.
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE order_lines, orders, stock_history, inventory_items, suppliers CASCADE;

		INSERT INTO inventory_items (id, name, description, quantity, purchase_price, sale_price, supplier, min_stock_alert) VALUES
		('COLA', 'Cola 600ml',     '',             10,  9.50, 15.00, 'Northside Beverages', 3),
		('CHIP', 'Corn Chips 62g', '',              5,  7.00, 12.00, 'Metro Wholesale',     0),
		('MILK', 'Whole Milk 1L',  'Refrigerated',  2, 18.00, 24.50, 'Metro Wholesale',     4);

		INSERT INTO stock_history (item_id, entry_type, quantity_change, details)
		SELECT id, 'initial_stock', quantity, 'Item created in the system.' FROM inventory_items;
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

// seedProcessingOrder inserts an order and its lines directly, bypassing
// OrderService, so the settlement engine can be exercised in isolation.
func seedProcessingOrder(t *testing.T, pool *pgxpool.Pool, title string, lines []core.SettlementLine) string {
	t.Helper()
	ctx := context.Background()

	orderID := uuid.NewString()
	_, err := pool.Exec(ctx,
		"INSERT INTO orders (id, title, status) VALUES ($1, $2, 'processing')", orderID, title)
	if err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	for _, l := range lines {
		_, err := pool.Exec(ctx, `
			INSERT INTO order_lines (order_id, item_id, name, quantity, purchase_price, sale_price)
			SELECT $1, id, name, $3, purchase_price, sale_price FROM inventory_items WHERE id = $2
		`, orderID, l.ItemID, l.Quantity)
		if err != nil {
			t.Fatalf("Failed to seed order line: %v", err)
		}
	}
	return orderID
}

func itemQuantity(t *testing.T, pool *pgxpool.Pool, id string) int {
	t.Helper()
	var qty int
	err := pool.QueryRow(context.Background(),
		"SELECT quantity FROM inventory_items WHERE id = $1", id).Scan(&qty)
	if err != nil {
		t.Fatalf("Failed to read quantity of %s: %v", id, err)
	}
	return qty
}

func saleHistoryCount(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()
	var count int
	err := pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM stock_history WHERE entry_type IN ('order_sale', 'direct_sale')").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count sale history: %v", err)
	}
	return count
}

func TestSettlement_CompletesOrderAtomically(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	sink := &core.CollectorSink{}
	engine := core.NewSettlementService(core.NewLedgerStore(pool), core.DefaultRetryPolicy(), sink)

	// 1. Seed an order for 8 of the 10 colas
	orderID := seedProcessingOrder(t, pool, "Morning delivery", []core.SettlementLine{
		{ItemID: "COLA", Quantity: 8},
	})

	// 2. Settle it
	res, err := engine.Settle(ctx, core.SettlementRequest{
		RequestID:   uuid.NewString(),
		Kind:        core.SettlementOrder,
		ReferenceID: orderID,
	})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if res.Message != `order "Morning delivery" completed` {
		t.Errorf("Unexpected settlement message: %q", res.Message)
	}

	// 3. Stock decremented
	if qty := itemQuantity(t, pool, "COLA"); qty != 2 {
		t.Errorf("Expected quantity 2 after settlement, got %d", qty)
	}

	// 4. Audit entry written
	var entryType, details string
	var change int
	err = pool.QueryRow(ctx, `
		SELECT entry_type, quantity_change, details FROM stock_history
		WHERE item_id = 'COLA' ORDER BY id DESC LIMIT 1
	`).Scan(&entryType, &change, &details)
	if err != nil {
		t.Fatalf("Failed to read history: %v", err)
	}
	if entryType != "order_sale" || change != -8 {
		t.Errorf("Expected order_sale entry with change -8, got %s %d", entryType, change)
	}
	if details != "Order ID: "+orderID {
		t.Errorf("Unexpected history details: %q", details)
	}

	// 5. Order transitioned in the same commit
	var status string
	var completedAt *time.Time
	err = pool.QueryRow(ctx, "SELECT status, completed_at FROM orders WHERE id = $1", orderID).Scan(&status, &completedAt)
	if err != nil {
		t.Fatalf("Failed to read order: %v", err)
	}
	if status != "completed" {
		t.Errorf("Expected status completed, got %s", status)
	}
	if completedAt == nil {
		t.Error("Completed order must have completed_at timestamp")
	}

	// 6. New quantity 2 is under the threshold 3, so one alert fires
	want := `"Cola 600ml" has reached the minimum stock threshold (2/3)`
	if len(res.Alerts) != 1 || res.Alerts[0] != want {
		t.Errorf("Expected alert %q, got %v", want, res.Alerts)
	}
	if got := sink.Messages(); len(got) != 1 || got[0] != want {
		t.Errorf("Expected sink to receive %q, got %v", want, got)
	}
}

func TestSettlement_InsufficientStockRollsBackEverything(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	sink := &core.CollectorSink{}
	engine := core.NewSettlementService(core.NewLedgerStore(pool), core.DefaultRetryPolicy(), sink)

	// 1. Two lines: the chips fit, the colas do not (10 available, 11 asked)
	orderID := seedProcessingOrder(t, pool, "Oversized order", []core.SettlementLine{
		{ItemID: "CHIP", Quantity: 2},
		{ItemID: "COLA", Quantity: 11},
	})

	_, err := engine.Settle(ctx, core.SettlementRequest{
		RequestID:   uuid.NewString(),
		Kind:        core.SettlementOrder,
		ReferenceID: orderID,
	})
	if !errors.Is(err, core.ErrInsufficientStock) {
		t.Fatalf("Expected insufficient stock, got: %v", err)
	}

	// 2. Neither item moved, not even the valid line
	if qty := itemQuantity(t, pool, "CHIP"); qty != 5 {
		t.Errorf("Expected CHIP untouched at 5, got %d", qty)
	}
	if qty := itemQuantity(t, pool, "COLA"); qty != 10 {
		t.Errorf("Expected COLA untouched at 10, got %d", qty)
	}

	// 3. No audit entries, order still open, no alerts
	if n := saleHistoryCount(t, pool); n != 0 {
		t.Errorf("Expected no sale history entries, got %d", n)
	}
	var status string
	if err := pool.QueryRow(ctx, "SELECT status FROM orders WHERE id = $1", orderID).Scan(&status); err != nil {
		t.Fatalf("Failed to read order: %v", err)
	}
	if status != "processing" {
		t.Errorf("Expected order still processing, got %s", status)
	}
	if got := sink.Messages(); len(got) != 0 {
		t.Errorf("Expected no alerts from a failed settlement, got %v", got)
	}
}

func TestSettlement_RejectsSecondCompletion(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	engine := core.NewSettlementService(core.NewLedgerStore(pool), core.DefaultRetryPolicy(), &core.CollectorSink{})
	orderID := seedProcessingOrder(t, pool, "One-shot order", []core.SettlementLine{
		{ItemID: "COLA", Quantity: 4},
	})

	req := core.SettlementRequest{RequestID: uuid.NewString(), Kind: core.SettlementOrder, ReferenceID: orderID}
	if _, err := engine.Settle(ctx, req); err != nil {
		t.Fatalf("First settlement failed: %v", err)
	}

	_, err := engine.Settle(ctx, core.SettlementRequest{
		RequestID:   uuid.NewString(),
		Kind:        core.SettlementOrder,
		ReferenceID: orderID,
	})
	if !errors.Is(err, core.ErrOrderAlreadySettled) {
		t.Fatalf("Expected already-settled rejection, got: %v", err)
	}

	// Stock decremented exactly once
	if qty := itemQuantity(t, pool, "COLA"); qty != 6 {
		t.Errorf("Expected quantity 6 after single settlement, got %d", qty)
	}
	if n := saleHistoryCount(t, pool); n != 1 {
		t.Errorf("Expected exactly one sale history entry, got %d", n)
	}
}

func TestSettlement_UnknownOrder(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	engine := core.NewSettlementService(core.NewLedgerStore(pool), core.DefaultRetryPolicy(), &core.CollectorSink{})
	_, err := engine.Settle(context.Background(), core.SettlementRequest{
		RequestID:   uuid.NewString(),
		Kind:        core.SettlementOrder,
		ReferenceID: uuid.NewString(),
	})
	if !errors.Is(err, core.ErrOrderNotFound) {
		t.Fatalf("Expected order not found, got: %v", err)
	}
}

func TestSettlement_UnknownItemInOrder(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	engine := core.NewSettlementService(core.NewLedgerStore(pool), core.DefaultRetryPolicy(), &core.CollectorSink{})

	// Order lines reference items loosely, so a line can outlive its item.
	// Settlement must refuse rather than invent stock.
	orderID := seedProcessingOrder(t, pool, "Stale order", []core.SettlementLine{
		{ItemID: "COLA", Quantity: 1},
	})
	_, err := pool.Exec(ctx, `
		INSERT INTO order_lines (order_id, item_id, name, quantity, purchase_price, sale_price)
		VALUES ($1, 'GONE', 'Ghost Item', 1, 1.00, 2.00)
	`, orderID)
	if err != nil {
		t.Fatalf("Failed to seed stale line: %v", err)
	}

	_, err = engine.Settle(ctx, core.SettlementRequest{
		RequestID:   uuid.NewString(),
		Kind:        core.SettlementOrder,
		ReferenceID: orderID,
	})
	if !errors.Is(err, core.ErrItemNotFound) {
		t.Fatalf("Expected item not found, got: %v", err)
	}
	if !strings.Contains(err.Error(), `"Ghost Item"`) {
		t.Errorf("Expected error to name the missing item, got: %v", err)
	}

	// The known line rolled back with the rest
	if qty := itemQuantity(t, pool, "COLA"); qty != 10 {
		t.Errorf("Expected COLA untouched at 10, got %d", qty)
	}
}

func TestSettlement_DirectSale(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	sink := &core.CollectorSink{}
	engine := core.NewSettlementService(core.NewLedgerStore(pool), core.DefaultRetryPolicy(), sink)

	res, err := engine.ProcessDirectSale(ctx, []core.SettlementLine{
		{ItemID: "CHIP", Name: "Corn Chips 62g", Quantity: 3},
	})
	if err != nil {
		t.Fatalf("ProcessDirectSale failed: %v", err)
	}
	if !strings.HasPrefix(res.Message, "sale ") || !strings.HasSuffix(res.Message, " processed, stock updated") {
		t.Errorf("Unexpected sale message: %q", res.Message)
	}

	if qty := itemQuantity(t, pool, "CHIP"); qty != 2 {
		t.Errorf("Expected quantity 2 after sale, got %d", qty)
	}

	var entryType, details string
	var change int
	err = pool.QueryRow(ctx, `
		SELECT entry_type, quantity_change, details FROM stock_history
		WHERE item_id = 'CHIP' ORDER BY id DESC LIMIT 1
	`).Scan(&entryType, &change, &details)
	if err != nil {
		t.Fatalf("Failed to read history: %v", err)
	}
	if entryType != "direct_sale" || change != -3 {
		t.Errorf("Expected direct_sale entry with change -3, got %s %d", entryType, change)
	}
	if !strings.HasPrefix(details, "Sale ID: ") {
		t.Errorf("Expected sale id in details, got %q", details)
	}

	// CHIP has alerting disabled (threshold 0), so low stock stays silent
	if got := sink.Messages(); len(got) != 0 {
		t.Errorf("Expected no alerts for threshold-0 item, got %v", got)
	}
}

func TestSettlement_MergesRepeatedLines(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	engine := core.NewSettlementService(core.NewLedgerStore(pool), core.DefaultRetryPolicy(), &core.CollectorSink{})

	// The same item scanned twice settles as one combined line
	_, err := engine.ProcessDirectSale(ctx, []core.SettlementLine{
		{ItemID: "COLA", Quantity: 2},
		{ItemID: "COLA", Quantity: 3},
	})
	if err != nil {
		t.Fatalf("ProcessDirectSale failed: %v", err)
	}

	if qty := itemQuantity(t, pool, "COLA"); qty != 5 {
		t.Errorf("Expected quantity 5, got %d", qty)
	}
	if n := saleHistoryCount(t, pool); n != 1 {
		t.Fatalf("Expected one merged sale entry, got %d", n)
	}

	var change int
	err = pool.QueryRow(ctx,
		"SELECT quantity_change FROM stock_history WHERE item_id = 'COLA' AND entry_type = 'direct_sale'").Scan(&change)
	if err != nil {
		t.Fatalf("Failed to read sale entry: %v", err)
	}
	if change != -5 {
		t.Errorf("Expected merged change -5, got %d", change)
	}
}

func TestSettlement_AlertFiresAtThresholdNotAtZero(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	sink := &core.CollectorSink{}
	engine := core.NewSettlementService(core.NewLedgerStore(pool), core.DefaultRetryPolicy(), sink)

	// 1. Landing exactly on the threshold fires the alert
	res, err := engine.ProcessDirectSale(ctx, []core.SettlementLine{{ItemID: "COLA", Quantity: 7}})
	if err != nil {
		t.Fatalf("Sale to threshold failed: %v", err)
	}
	want := `"Cola 600ml" has reached the minimum stock threshold (3/3)`
	if len(res.Alerts) != 1 || res.Alerts[0] != want {
		t.Errorf("Expected alert %q, got %v", want, res.Alerts)
	}

	// 2. Selling out entirely does not: zero stock is an ordering problem,
	// not a low-stock warning
	res, err = engine.ProcessDirectSale(ctx, []core.SettlementLine{{ItemID: "MILK", Quantity: 2}})
	if err != nil {
		t.Fatalf("Sale to zero failed: %v", err)
	}
	if len(res.Alerts) != 0 {
		t.Errorf("Expected no alert at zero stock, got %v", res.Alerts)
	}
	if qty := itemQuantity(t, pool, "MILK"); qty != 0 {
		t.Errorf("Expected MILK sold out, got %d", qty)
	}

	if got := sink.Messages(); len(got) != 1 {
		t.Errorf("Expected exactly one alert overall, got %v", got)
	}
}

func TestSettlement_ConcurrentSalesNeverOversell(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	engine := core.NewSettlementService(core.NewLedgerStore(pool), core.DefaultRetryPolicy(), &core.CollectorSink{})

	// Two clerks sell 7 of the 10 colas at the same moment. Row locks force
	// the second settlement to see the first one's commit.
	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.ProcessDirectSale(ctx, []core.SettlementLine{{ItemID: "COLA", Quantity: 7}})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var rejected int
	for err := range results {
		if err == nil {
			continue
		}
		rejected++
		if !errors.Is(err, core.ErrInsufficientStock) {
			t.Errorf("Expected insufficient stock, got: %v", err)
		}
	}
	if rejected != 1 {
		t.Fatalf("Expected exactly one rejected sale, got %d", rejected)
	}

	if qty := itemQuantity(t, pool, "COLA"); qty != 3 {
		t.Errorf("Expected quantity 3 after one successful sale, got %d", qty)
	}
	if n := saleHistoryCount(t, pool); n != 1 {
		t.Errorf("Expected one sale history entry, got %d", n)
	}
}

func TestSettlement_LedgerStaysReconciled(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	store := core.NewLedgerStore(pool)
	engine := core.NewSettlementService(store, core.DefaultRetryPolicy(), &core.CollectorSink{})

	// 1. Mixed traffic: one order settlement, one direct sale
	orderID := seedProcessingOrder(t, pool, "Reconciled order", []core.SettlementLine{
		{ItemID: "COLA", Quantity: 4},
		{ItemID: "CHIP", Quantity: 1},
	})
	if _, err := engine.Settle(ctx, core.SettlementRequest{
		RequestID: uuid.NewString(), Kind: core.SettlementOrder, ReferenceID: orderID,
	}); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if _, err := engine.ProcessDirectSale(ctx, []core.SettlementLine{{ItemID: "MILK", Quantity: 1}}); err != nil {
		t.Fatalf("ProcessDirectSale failed: %v", err)
	}

	// 2. Every item's quantity still equals its summed history
	violations, err := store.CheckReconciliation(ctx)
	if err != nil {
		t.Fatalf("CheckReconciliation failed: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("Expected clean reconciliation, got %v", violations)
	}

	// 3. A quantity edit that bypasses the history is detected
	if _, err := pool.Exec(ctx, "UPDATE inventory_items SET quantity = quantity + 1 WHERE id = 'CHIP'"); err != nil {
		t.Fatalf("Failed to corrupt quantity: %v", err)
	}
	violations, err = store.CheckReconciliation(ctx)
	if err != nil {
		t.Fatalf("CheckReconciliation failed: %v", err)
	}
	if len(violations) != 1 {
		t.Fatalf("Expected one violation, got %v", violations)
	}
	v := violations[0]
	if v.ItemID != "CHIP" || v.Quantity != 5 || v.HistorySum != 4 {
		t.Errorf("Unexpected violation: %+v", v)
	}

	// 4. The targeted single-item check agrees with the sweep
	single, err := store.CheckItemReconciliation(ctx, "CHIP")
	if err != nil {
		t.Fatalf("CheckItemReconciliation failed: %v", err)
	}
	if single == nil || single.Quantity != 5 || single.HistorySum != 4 {
		t.Errorf("Unexpected single-item violation: %+v", single)
	}
	clean, err := store.CheckItemReconciliation(ctx, "COLA")
	if err != nil {
		t.Fatalf("CheckItemReconciliation failed: %v", err)
	}
	if clean != nil {
		t.Errorf("Expected COLA to reconcile, got %+v", clean)
	}
}
