package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory-ledger/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// setupOrderTestDB builds the order service on top of the base test DB,
// together with the item service the snapshot tests edit prices through.
func setupOrderTestDB(t *testing.T) (*pgxpool.Pool, core.OrderService, core.ItemService, context.Context) {
	t.Helper()
	pool := setupTestDB(t)

	engine := core.NewSettlementService(core.NewLedgerStore(pool), core.DefaultRetryPolicy(), &core.CollectorSink{})
	orders := core.NewOrderService(pool, engine, core.DefaultRetryPolicy())
	items := core.NewItemService(pool, core.DefaultRetryPolicy())

	return pool, orders, items, context.Background()
}

func TestOrderService_CreateSnapshotsPrices(t *testing.T) {
	pool, orders, items, ctx := setupOrderTestDB(t)
	defer pool.Close()

	// 1. Order 2 colas at today's prices: 2 × 15.00 = 30.00
	order, err := orders.CreateOrder(ctx, "Front table", []core.OrderLineInput{
		{ItemID: "COLA", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.Status != core.OrderStatusProcessing {
		t.Errorf("Expected processing, got %s", order.Status)
	}
	if !order.Price.Equal(decimal.NewFromFloat(30.00)) {
		t.Errorf("Expected total 30.00, got %s", order.Price)
	}
	if len(order.Lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(order.Lines))
	}
	line := order.Lines[0]
	if line.Name != "Cola 600ml" || !line.SalePrice.Equal(decimal.NewFromFloat(15.00)) {
		t.Errorf("Unexpected snapshot line: %+v", line)
	}
	if !line.PurchasePrice.Equal(decimal.NewFromFloat(9.50)) {
		t.Errorf("Expected purchase price 9.50 in snapshot, got %s", line.PurchasePrice)
	}
	if order.CreatedAt.IsZero() {
		t.Error("Created order must carry created_at")
	}

	// 2. Reprice the item after the fact
	newPrice := decimal.NewFromFloat(99.00)
	if _, err := items.UpdateItemDetails(ctx, "COLA", core.ItemDetailsUpdate{SalePrice: &newPrice}); err != nil {
		t.Fatalf("UpdateItemDetails failed: %v", err)
	}

	// 3. The order still quotes what the customer was promised
	got, err := orders.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if !got.Price.Equal(decimal.NewFromFloat(30.00)) {
		t.Errorf("Expected snapshot total 30.00 to survive repricing, got %s", got.Price)
	}
	if !got.Lines[0].SalePrice.Equal(decimal.NewFromFloat(15.00)) {
		t.Errorf("Expected snapshot line price 15.00, got %s", got.Lines[0].SalePrice)
	}
}

func TestOrderService_EmptyTitleGetsNumbered(t *testing.T) {
	pool, orders, _, ctx := setupOrderTestDB(t)
	defer pool.Close()

	first, err := orders.CreateOrder(ctx, "", []core.OrderLineInput{{ItemID: "COLA", Quantity: 1}})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if first.Title != "Order #1" {
		t.Errorf("Expected Order #1, got %q", first.Title)
	}

	second, err := orders.CreateOrder(ctx, "", []core.OrderLineInput{{ItemID: "CHIP", Quantity: 1}})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if second.Title != "Order #2" {
		t.Errorf("Expected Order #2, got %q", second.Title)
	}
}

func TestOrderService_CreateValidation(t *testing.T) {
	pool, orders, _, ctx := setupOrderTestDB(t)
	defer pool.Close()

	// 1. No lines
	if _, err := orders.CreateOrder(ctx, "Empty", nil); err == nil {
		t.Error("Expected rejection of an order without lines")
	}

	// 2. Missing item id, non-positive quantity
	if _, err := orders.CreateOrder(ctx, "Bad line", []core.OrderLineInput{{ItemID: "", Quantity: 1}}); err == nil {
		t.Error("Expected rejection of a line without item id")
	}
	if _, err := orders.CreateOrder(ctx, "Bad qty", []core.OrderLineInput{{ItemID: "COLA", Quantity: 0}}); err == nil {
		t.Error("Expected rejection of a zero-quantity line")
	}

	// 3. Unknown item
	_, err := orders.CreateOrder(ctx, "Ghost", []core.OrderLineInput{{ItemID: "NOPE", Quantity: 1}})
	if !errors.Is(err, core.ErrItemNotFound) {
		t.Errorf("Expected item not found, got: %v", err)
	}

	// 4. More than the shelf holds; the courtesy check refuses up front
	_, err = orders.CreateOrder(ctx, "Too big", []core.OrderLineInput{{ItemID: "MILK", Quantity: 3}})
	if !errors.Is(err, core.ErrInsufficientStock) {
		t.Errorf("Expected insufficient stock, got: %v", err)
	}

	// 5. None of the rejected orders left a row behind
	count, err := orders.CountOrders(ctx)
	if err != nil {
		t.Fatalf("CountOrders failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no persisted orders, got %d", count)
	}
}

func TestOrderService_CompleteOrder(t *testing.T) {
	pool, orders, _, ctx := setupOrderTestDB(t)
	defer pool.Close()

	order, err := orders.CreateOrder(ctx, "Lunch run", []core.OrderLineInput{
		{ItemID: "COLA", Quantity: 4},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// Creation alone must not move stock
	if qty := itemQuantity(t, pool, "COLA"); qty != 10 {
		t.Errorf("Expected stock untouched at 10 before completion, got %d", qty)
	}

	res, err := orders.CompleteOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("CompleteOrder failed: %v", err)
	}
	if res.Message != `order "Lunch run" completed` {
		t.Errorf("Unexpected message: %q", res.Message)
	}
	if qty := itemQuantity(t, pool, "COLA"); qty != 6 {
		t.Errorf("Expected quantity 6 after completion, got %d", qty)
	}

	got, err := orders.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if got.Status != core.OrderStatusCompleted {
		t.Errorf("Expected completed, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("Completed order must have CompletedAt")
	}
}

func TestOrderService_CancelProcessingOrder(t *testing.T) {
	pool, orders, _, ctx := setupOrderTestDB(t)
	defer pool.Close()

	order, err := orders.CreateOrder(ctx, "Changed their mind", []core.OrderLineInput{
		{ItemID: "CHIP", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if err := orders.CancelOrder(ctx, order.ID); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}

	// Order and lines are gone, stock was never touched
	_, err = orders.GetOrder(ctx, order.ID)
	if !errors.Is(err, core.ErrOrderNotFound) {
		t.Errorf("Expected order not found after cancel, got: %v", err)
	}
	var lineCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM order_lines WHERE order_id = $1", order.ID).Scan(&lineCount); err != nil {
		t.Fatalf("Failed to count lines: %v", err)
	}
	if lineCount != 0 {
		t.Errorf("Expected lines removed with the order, got %d", lineCount)
	}
	if qty := itemQuantity(t, pool, "CHIP"); qty != 5 {
		t.Errorf("Expected stock untouched at 5, got %d", qty)
	}
}

func TestOrderService_CancelRejectsCompletedOrder(t *testing.T) {
	pool, orders, _, ctx := setupOrderTestDB(t)
	defer pool.Close()

	order, err := orders.CreateOrder(ctx, "Done deal", []core.OrderLineInput{
		{ItemID: "COLA", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if _, err := orders.CompleteOrder(ctx, order.ID); err != nil {
		t.Fatalf("CompleteOrder failed: %v", err)
	}

	err = orders.CancelOrder(ctx, order.ID)
	if !errors.Is(err, core.ErrOrderAlreadySettled) {
		t.Fatalf("Expected already-settled rejection, got: %v", err)
	}

	// The audit trail survives the attempt
	if n := saleHistoryCount(t, pool); n != 1 {
		t.Errorf("Expected sale history intact, got %d entries", n)
	}

	// Cancelling something that never existed is its own error
	err = orders.CancelOrder(ctx, "no-such-order")
	if !errors.Is(err, core.ErrOrderNotFound) {
		t.Fatalf("Expected order not found, got: %v", err)
	}
}

func TestOrderService_ListAndFilter(t *testing.T) {
	pool, orders, _, ctx := setupOrderTestDB(t)
	defer pool.Close()

	older, err := orders.CreateOrder(ctx, "First in", []core.OrderLineInput{{ItemID: "COLA", Quantity: 1}})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	newer, err := orders.CreateOrder(ctx, "Second in", []core.OrderLineInput{{ItemID: "CHIP", Quantity: 1}})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if _, err := orders.CompleteOrder(ctx, older.ID); err != nil {
		t.Fatalf("CompleteOrder failed: %v", err)
	}

	// 1. Unfiltered: both, newest first, lines attached
	all, err := orders.ListOrders(ctx, nil)
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 orders, got %d", len(all))
	}
	if all[0].ID != newer.ID {
		t.Errorf("Expected newest order first, got %q", all[0].Title)
	}
	if len(all[0].Lines) != 1 || len(all[1].Lines) != 1 {
		t.Error("Expected lines attached to every listed order")
	}

	// 2. Filtered by status
	processing := core.OrderStatusProcessing
	open, err := orders.ListOrders(ctx, &processing)
	if err != nil {
		t.Fatalf("ListOrders(processing) failed: %v", err)
	}
	if len(open) != 1 || open[0].ID != newer.ID {
		t.Errorf("Expected only the open order, got %d", len(open))
	}

	completed := core.OrderStatusCompleted
	done, err := orders.ListOrders(ctx, &completed)
	if err != nil {
		t.Fatalf("ListOrders(completed) failed: %v", err)
	}
	if len(done) != 1 || done[0].ID != older.ID {
		t.Errorf("Expected only the settled order, got %d", len(done))
	}
}

func TestOrderService_CompletedOrdersInRange(t *testing.T) {
	pool, orders, _, ctx := setupOrderTestDB(t)
	defer pool.Close()

	order, err := orders.CreateOrder(ctx, "Windowed", []core.OrderLineInput{{ItemID: "COLA", Quantity: 2}})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if _, err := orders.CompleteOrder(ctx, order.ID); err != nil {
		t.Fatalf("CompleteOrder failed: %v", err)
	}

	// Pin completed_at so the window arithmetic is exact
	settledAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if _, err := pool.Exec(ctx, "UPDATE orders SET completed_at = $1 WHERE id = $2", settledAt, order.ID); err != nil {
		t.Fatalf("Failed to pin completed_at: %v", err)
	}

	// 1. [from, to) includes the lower bound
	got, err := orders.CompletedOrdersInRange(ctx, settledAt, settledAt.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("CompletedOrdersInRange failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 order in window, got %d", len(got))
	}
	if len(got[0].Lines) != 1 {
		t.Errorf("Expected lines attached, got %d", len(got[0].Lines))
	}

	// 2. ...and excludes the upper bound
	got, err = orders.CompletedOrdersInRange(ctx, settledAt.Add(-24*time.Hour), settledAt)
	if err != nil {
		t.Fatalf("CompletedOrdersInRange failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected exclusive upper bound, got %d orders", len(got))
	}
}
