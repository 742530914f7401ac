package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// OrderService manages the order lifecycle around the settlement engine:
// creation with price snapshots, listing, completion, and cancellation.
// It is the request producer for OrderCompletion settlements; stock
// validation at completion time belongs to the engine, not to this service.
type OrderService interface {
	// Lifecycle

	// CreateOrder records a new processing order. Prices are snapshotted
	// from the current item rows inside one transaction and the order total
	// computed from the snapshot, so later price edits never rewrite what a
	// customer was quoted. An empty title defaults to "Order #<n>".
	// Availability is pre-checked as a courtesy; the settlement engine
	// re-validates at completion time regardless.
	CreateOrder(ctx context.Context, title string, lines []OrderLineInput) (*Order, error)
	// CompleteOrder settles the order through the settlement engine: stock
	// decrements, audit entries, and the status transition commit
	// atomically or not at all.
	CompleteOrder(ctx context.Context, id string) (*SettlementResult, error)
	// CancelOrder removes a processing order and its lines. Completed
	// orders cannot be cancelled; their audit trail stays intact.
	CancelOrder(ctx context.Context, id string) error

	// Queries
	GetOrder(ctx context.Context, id string) (*Order, error)
	// ListOrders returns orders newest first. Pass status=nil for all.
	ListOrders(ctx context.Context, status *OrderStatus) ([]Order, error)
	CountOrders(ctx context.Context) (int, error)
	// CompletedOrdersInRange returns completed orders whose completed_at
	// falls in [from, to), lines included. The reporting service builds its
	// revenue and cost figures from this window.
	CompletedOrdersInRange(ctx context.Context, from, to time.Time) ([]Order, error)
}

type orderService struct {
	pool   *pgxpool.Pool
	store  *LedgerStore
	engine SettlementService
	policy RetryPolicy
}

func NewOrderService(pool *pgxpool.Pool, engine SettlementService, policy RetryPolicy) OrderService {
	return &orderService{pool: pool, store: NewLedgerStore(pool), engine: engine, policy: policy}
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func (s *orderService) CreateOrder(ctx context.Context, title string, lines []OrderLineInput) (*Order, error) {
	if len(lines) == 0 {
		return nil, errors.New("order requires at least one line")
	}
	for _, l := range lines {
		if l.ItemID == "" {
			return nil, errors.New("order line item id is required")
		}
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("order line quantity must be positive, got %d for item %s", l.Quantity, l.ItemID)
		}
	}

	order := &Order{ID: uuid.NewString(), Title: title, Status: OrderStatusProcessing}
	err := s.store.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if order.Title == "" {
			var count int
			if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&count); err != nil {
				return fmt.Errorf("failed to count orders: %w", err)
			}
			order.Title = fmt.Sprintf("Order #%d", count+1)
		}

		total := decimal.Zero
		snapshot := make([]OrderLine, 0, len(lines))
		for _, l := range lines {
			it, err := s.store.GetItemQ(ctx, tx, l.ItemID)
			if err != nil {
				return err
			}
			if it.Quantity < l.Quantity {
				return fmt.Errorf("%w for %q: available %d, requested %d",
					ErrInsufficientStock, it.Name, it.Quantity, l.Quantity)
			}
			snapshot = append(snapshot, OrderLine{
				OrderID:       order.ID,
				ItemID:        it.ID,
				Name:          it.Name,
				Quantity:      l.Quantity,
				PurchasePrice: it.PurchasePrice,
				SalePrice:     it.SalePrice,
			})
			total = total.Add(it.SalePrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		order.Price = total
		order.Lines = snapshot

		if err := tx.QueryRow(ctx, `
			INSERT INTO orders (id, title, status, price)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`, order.ID, order.Title, string(order.Status), order.Price).Scan(&order.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		for i := range order.Lines {
			l := &order.Lines[i]
			if err := tx.QueryRow(ctx, `
				INSERT INTO order_lines (order_id, item_id, name, quantity, purchase_price, sale_price)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id
			`, l.OrderID, l.ItemID, l.Name, l.Quantity, l.PurchasePrice, l.SalePrice).Scan(&l.ID); err != nil {
				return fmt.Errorf("failed to insert order line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) CompleteOrder(ctx context.Context, id string) (*SettlementResult, error) {
	return s.engine.Settle(ctx, SettlementRequest{
		RequestID:   uuid.NewString(),
		Kind:        SettlementOrder,
		ReferenceID: id,
	})
}

func (s *orderService) CancelOrder(ctx context.Context, id string) error {
	return s.policy.Do(ctx, func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx,
			"DELETE FROM orders WHERE id = $1 AND status = $2", id, string(OrderStatusProcessing))
		if err != nil {
			return fmt.Errorf("failed to cancel order %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			var status string
			err := s.pool.QueryRow(ctx, "SELECT status FROM orders WHERE id = $1", id).Scan(&status)
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
			}
			if err != nil {
				return fmt.Errorf("failed to inspect order %s: %w", id, err)
			}
			return fmt.Errorf("%w: %s cannot be cancelled", ErrOrderAlreadySettled, id)
		}
		return nil
	})
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *orderService) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(s.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("failed to read order %s: %w", id, err)
	}
	lines, err := s.store.OrderLinesQ(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return o, nil
}

func (s *orderService) ListOrders(ctx context.Context, status *OrderStatus) ([]Order, error) {
	query := "SELECT " + orderColumns + " FROM orders"
	var args []any
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, string(*status))
	}
	query += " ORDER BY created_at DESC, id"

	orders, err := s.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := s.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) CountOrders(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func (s *orderService) CompletedOrdersInRange(ctx context.Context, from, to time.Time) ([]Order, error) {
	orders, err := s.queryOrders(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE status = $1 AND completed_at >= $2 AND completed_at < $3 ORDER BY completed_at, id",
		string(OrderStatusCompleted), from, to)
	if err != nil {
		return nil, err
	}
	if err := s.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders iteration error: %w", err)
	}
	return orders, nil
}

// attachLines loads the snapshot lines for a batch of orders in one query.
func (s *orderService) attachLines(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, item_id, name, quantity, purchase_price, sale_price
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Name, &l.Quantity, &l.PurchasePrice, &l.SalePrice); err != nil {
			return fmt.Errorf("failed to scan order line: %w", err)
		}
		if o, ok := byID[l.OrderID]; ok {
			o.Lines = append(o.Lines, l)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("order lines iteration error: %w", err)
	}
	return nil
}
