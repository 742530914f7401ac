package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared
// query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxRowsQuerier extends pgxQuerier with multi-row queries.
type pgxRowsQuerier interface {
	pgxQuerier
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LedgerStore is the storage layer for inventory items, their append-only
// stock history, and orders: point reads, point writes, and the multi-key
// transactional primitive the settlement engine builds on. It performs no
// business validation of its own.
type LedgerStore struct {
	pool *pgxpool.Pool
}

func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// InTx runs fn as one atomic unit: begin, fn, commit. Any error from fn or
// from the commit rolls the whole unit back; effects are never partial.
func (s *LedgerStore) InTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ── Inventory items ──────────────────────────────────────────────────────────

const itemColumns = "id, name, description, quantity, purchase_price, sale_price, supplier, min_stock_alert, created_at, updated_at"

func scanItem(row pgx.Row) (*InventoryItem, error) {
	var it InventoryItem
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Quantity,
		&it.PurchasePrice, &it.SalePrice, &it.Supplier, &it.MinStockAlert,
		&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// GetItem reads one item by id outside any transaction.
func (s *LedgerStore) GetItem(ctx context.Context, id string) (*InventoryItem, error) {
	return s.GetItemQ(ctx, s.pool, id)
}

// GetItemQ reads one item through q (pool or open transaction).
func (s *LedgerStore) GetItemQ(ctx context.Context, q pgxQuerier, id string) (*InventoryItem, error) {
	it, err := scanItem(q.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM inventory_items WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		return nil, fmt.Errorf("failed to read item %s: %w", id, err)
	}
	return it, nil
}

// LockItemsTx reads and row-locks every listed item inside tx. Ids are
// locked in sorted order by the single statement, which keeps concurrent
// overlapping settlements from deadlocking against each other. Items that
// do not exist are simply absent from the result; callers detect the gap.
func (s *LedgerStore) LockItemsTx(ctx context.Context, tx pgx.Tx, ids []string) (map[string]*InventoryItem, error) {
	rows, err := tx.Query(ctx,
		"SELECT "+itemColumns+" FROM inventory_items WHERE id = ANY($1) ORDER BY id FOR UPDATE", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock items: %w", err)
	}
	defer rows.Close()

	items := make(map[string]*InventoryItem, len(ids))
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked item: %w", err)
		}
		items[it.ID] = it
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lock items iteration error: %w", err)
	}
	return items, nil
}

// InsertItemTx inserts a new item row. A colliding id surfaces as
// ErrDuplicateItem.
func (s *LedgerStore) InsertItemTx(ctx context.Context, tx pgx.Tx, item *InventoryItem) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO inventory_items (id, name, description, quantity, purchase_price, sale_price, supplier, min_stock_alert)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, item.ID, item.Name, item.Description, item.Quantity,
		item.PurchasePrice, item.SalePrice, item.Supplier, item.MinStockAlert)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
		}
		return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
	}
	return nil
}

// UpdateItemQuantityTx writes an item's new quantity inside tx. The caller
// has already validated the quantity and holds the row lock.
func (s *LedgerStore) UpdateItemQuantityTx(ctx context.Context, tx pgx.Tx, id string, newQuantity int) error {
	tag, err := tx.Exec(ctx,
		"UPDATE inventory_items SET quantity = $2, updated_at = NOW() WHERE id = $1", id, newQuantity)
	if err != nil {
		return fmt.Errorf("failed to update quantity for item %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return nil
}

// ── Stock history (append-only) ──────────────────────────────────────────────

// AppendHistoryTx appends one immutable audit entry for an item inside tx.
// Every quantity-affecting write commits its entry in the same transaction,
// which is what keeps the reconciliation invariant true after every write.
func (s *LedgerStore) AppendHistoryTx(ctx context.Context, tx pgx.Tx, itemID string, entryType EntryType, quantityChange int, details string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_history (item_id, entry_type, quantity_change, details)
		VALUES ($1, $2, $3, $4)
	`, itemID, string(entryType), quantityChange, details)
	if err != nil {
		return fmt.Errorf("failed to append history for item %s: %w", itemID, err)
	}
	return nil
}

// ItemHistory returns an item's audit entries, newest first.
func (s *LedgerStore) ItemHistory(ctx context.Context, itemID string) ([]StockHistoryEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, item_id, entry_type, quantity_change, details, created_at
		FROM stock_history
		WHERE item_id = $1
		ORDER BY created_at DESC, id DESC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for item %s: %w", itemID, err)
	}
	defer rows.Close()

	var entries []StockHistoryEntry
	for rows.Next() {
		var e StockHistoryEntry
		var entryType string
		if err := rows.Scan(&e.ID, &e.ItemID, &entryType, &e.QuantityChange, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Type = EntryType(entryType)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history iteration error: %w", err)
	}
	return entries, nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

const orderColumns = "id, title, status, price, created_at, completed_at"

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var status string
	err := row.Scan(&o.ID, &o.Title, &status, &o.Price, &o.CreatedAt, &o.CompletedAt)
	if err != nil {
		return nil, err
	}
	o.Status = OrderStatus(status)
	return &o, nil
}

// LockOrderTx reads and row-locks one order header inside tx. Lines are not
// loaded; use OrderLinesQ.
func (s *LedgerStore) LockOrderTx(ctx context.Context, tx pgx.Tx, orderID string) (*Order, error) {
	o, err := scanOrder(tx.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1 FOR UPDATE", orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to lock order %s: %w", orderID, err)
	}
	return o, nil
}

// OrderLinesQ fetches an order's snapshot lines through q, in creation order.
func (s *LedgerStore) OrderLinesQ(ctx context.Context, q pgxRowsQuerier, orderID string) ([]OrderLine, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, item_id, name, quantity, purchase_price, sale_price
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for order %s: %w", orderID, err)
	}
	defer rows.Close()

	var lines []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Name, &l.Quantity, &l.PurchasePrice, &l.SalePrice); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order lines iteration error: %w", err)
	}
	return lines, nil
}

// MarkOrderCompletedTx transitions a locked order to completed and stamps
// completed_at.
func (s *LedgerStore) MarkOrderCompletedTx(ctx context.Context, tx pgx.Tx, orderID string) error {
	_, err := tx.Exec(ctx,
		"UPDATE orders SET status = $2, completed_at = NOW() WHERE id = $1",
		orderID, string(OrderStatusCompleted))
	if err != nil {
		return fmt.Errorf("failed to complete order %s: %w", orderID, err)
	}
	return nil
}

// ── Reconciliation ───────────────────────────────────────────────────────────

// CheckItemReconciliation compares one item's ledger quantity against the
// sum of its history entries. Returns nil when they agree, the violation
// otherwise.
func (s *LedgerStore) CheckItemReconciliation(ctx context.Context, itemID string) (*InvariantViolationError, error) {
	var quantity, historySum int
	err := s.pool.QueryRow(ctx, `
		SELECT i.quantity, COALESCE(SUM(h.quantity_change), 0)
		FROM inventory_items i
		LEFT JOIN stock_history h ON h.item_id = i.id
		WHERE i.id = $1
		GROUP BY i.quantity
	`, itemID).Scan(&quantity, &historySum)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to reconcile item %s: %w", itemID, err)
	}
	if quantity != historySum {
		return &InvariantViolationError{ItemID: itemID, Quantity: quantity, HistorySum: historySum}, nil
	}
	return nil, nil
}

// CheckReconciliation sweeps every item and returns all reconciliation
// violations. An empty slice means the ledger and its history agree.
func (s *LedgerStore) CheckReconciliation(ctx context.Context) ([]InvariantViolationError, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.quantity, COALESCE(SUM(h.quantity_change), 0) AS history_sum
		FROM inventory_items i
		LEFT JOIN stock_history h ON h.item_id = i.id
		GROUP BY i.id, i.quantity
		HAVING i.quantity <> COALESCE(SUM(h.quantity_change), 0)
		ORDER BY i.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to run reconciliation sweep: %w", err)
	}
	defer rows.Close()

	var violations []InvariantViolationError
	for rows.Next() {
		var v InvariantViolationError
		if err := rows.Scan(&v.ItemID, &v.Quantity, &v.HistorySum); err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation row: %w", err)
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reconciliation iteration error: %w", err)
	}
	return violations, nil
}
