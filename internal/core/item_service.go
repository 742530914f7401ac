package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ItemDetailsUpdate carries the editable non-quantity fields of an item.
// Nil fields are left unchanged.
type ItemDetailsUpdate struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	Supplier      *string          `json:"supplier"`
	MinStockAlert *int             `json:"min_stock_alert"`
}

// ItemService manages the inventory catalog: registration, detail edits,
// and manual quantity adjustments.
//
// Quantity never moves without an audit entry. CreateItem seeds the history
// with an initial_stock entry equal to the opening quantity; AdjustQuantity
// records the signed delta as a manual_adjustment in the same transaction
// that updates the row. UpdateItemDetails cannot touch quantity at all, so
// the reconciliation invariant (current quantity equals the sum of history
// deltas) survives every edit path.
type ItemService interface {
	CreateItem(ctx context.Context, item *InventoryItem) (*InventoryItem, error)
	UpdateItemDetails(ctx context.Context, id string, upd ItemDetailsUpdate) (*InventoryItem, error)

	// AdjustQuantity applies a signed manual correction to an item's stock.
	// The row is locked, the resulting quantity validated non-negative, and
	// the delta appended to the history, all in one transaction. A zero
	// delta is a no-op.
	AdjustQuantity(ctx context.Context, id string, delta int, reason string) (*InventoryItem, error)

	GetItem(ctx context.Context, id string) (*InventoryItem, error)
	ListItems(ctx context.Context) ([]InventoryItem, error)
	ItemHistory(ctx context.Context, id string) ([]StockHistoryEntry, error)
}

type itemService struct {
	pool   *pgxpool.Pool
	store  *LedgerStore
	policy RetryPolicy
}

func NewItemService(pool *pgxpool.Pool, policy RetryPolicy) ItemService {
	return &itemService{pool: pool, store: NewLedgerStore(pool), policy: policy}
}

func (s *itemService) CreateItem(ctx context.Context, item *InventoryItem) (*InventoryItem, error) {
	if err := validateNewItem(item); err != nil {
		return nil, err
	}
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		return s.store.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			if err := s.store.InsertItemTx(ctx, tx, item); err != nil {
				return err
			}
			return s.store.AppendHistoryTx(ctx, tx, item.ID, EntryInitialStock,
				item.Quantity, "Item created in the system.")
		})
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetItem(ctx, item.ID)
}

func (s *itemService) UpdateItemDetails(ctx context.Context, id string, upd ItemDetailsUpdate) (*InventoryItem, error) {
	if err := validateDetailsUpdate(upd); err != nil {
		return nil, err
	}
	it, err := scanItem(s.pool.QueryRow(ctx, `
		UPDATE inventory_items
		SET name            = COALESCE($2, name),
		    description     = COALESCE($3, description),
		    purchase_price  = COALESCE($4, purchase_price),
		    sale_price      = COALESCE($5, sale_price),
		    supplier        = COALESCE($6, supplier),
		    min_stock_alert = COALESCE($7, min_stock_alert),
		    updated_at      = NOW()
		WHERE id = $1
		RETURNING `+itemColumns,
		id, upd.Name, upd.Description, upd.PurchasePrice, upd.SalePrice, upd.Supplier, upd.MinStockAlert))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		return nil, fmt.Errorf("failed to update item %s: %w", id, err)
	}
	return it, nil
}

func (s *itemService) AdjustQuantity(ctx context.Context, id string, delta int, reason string) (*InventoryItem, error) {
	if reason == "" {
		reason = "Item updated manually."
	}
	var updated *InventoryItem
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		return s.store.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			items, err := s.store.LockItemsTx(ctx, tx, []string{id})
			if err != nil {
				return err
			}
			it, ok := items[id]
			if !ok {
				return fmt.Errorf("%w: %s", ErrItemNotFound, id)
			}
			newQty := it.Quantity + delta
			if newQty < 0 {
				return fmt.Errorf("%w for %q: available %d, requested removal of %d",
					ErrInsufficientStock, it.Name, it.Quantity, -delta)
			}
			if delta == 0 {
				updated = it
				return nil
			}
			if err := s.store.UpdateItemQuantityTx(ctx, tx, id, newQty); err != nil {
				return err
			}
			if err := s.store.AppendHistoryTx(ctx, tx, id, EntryManualAdjustment, delta, reason); err != nil {
				return err
			}
			it.Quantity = newQty
			updated = it
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *itemService) GetItem(ctx context.Context, id string) (*InventoryItem, error) {
	return s.store.GetItem(ctx, id)
}

func (s *itemService) ListItems(ctx context.Context) ([]InventoryItem, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+itemColumns+" FROM inventory_items ORDER BY lower(name)")
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("items iteration error: %w", err)
	}
	return items, nil
}

func (s *itemService) ItemHistory(ctx context.Context, id string) ([]StockHistoryEntry, error) {
	if _, err := s.store.GetItem(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ItemHistory(ctx, id)
}

func validateNewItem(item *InventoryItem) error {
	if item == nil || item.ID == "" {
		return errors.New("item id is required")
	}
	if item.Name == "" {
		return errors.New("item name is required")
	}
	if item.Quantity < 0 {
		return errors.New("item quantity cannot be negative")
	}
	if item.MinStockAlert < 0 {
		return errors.New("min stock alert cannot be negative")
	}
	if item.PurchasePrice.IsNegative() || item.SalePrice.IsNegative() {
		return errors.New("item prices cannot be negative")
	}
	return nil
}

func validateDetailsUpdate(upd ItemDetailsUpdate) error {
	if upd.Name != nil && *upd.Name == "" {
		return errors.New("item name cannot be empty")
	}
	if upd.MinStockAlert != nil && *upd.MinStockAlert < 0 {
		return errors.New("min stock alert cannot be negative")
	}
	if upd.PurchasePrice != nil && upd.PurchasePrice.IsNegative() {
		return errors.New("purchase price cannot be negative")
	}
	if upd.SalePrice != nil && upd.SalePrice.IsNegative() {
		return errors.New("sale price cannot be negative")
	}
	return nil
}
