package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is one ledger record. ID is the externally assigned barcode.
// Supplier and MinStockAlert are optional: empty string / zero mean unset.
type InventoryItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Supplier      string          `json:"supplier"`
	MinStockAlert int             `json:"min_stock_alert"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type EntryType string

const (
	EntryInitialStock     EntryType = "initial_stock"
	EntryManualAdjustment EntryType = "manual_adjustment"
	EntryOrderSale        EntryType = "order_sale"
	EntryDirectSale       EntryType = "direct_sale"
)

// StockHistoryEntry is one immutable audit record of a quantity change.
// QuantityChange is signed: negative for sales, positive or negative for
// manual adjustments, the opening quantity for initial_stock entries.
// The running sum of QuantityChange for an item always equals its current
// quantity (reconciliation invariant).
type StockHistoryEntry struct {
	ID             int64     `json:"id"`
	ItemID         string    `json:"item_id"`
	Type           EntryType `json:"type"`
	QuantityChange int       `json:"quantity_change"`
	Details        string    `json:"details"` // free-text reference to the originating transaction
	CreatedAt      time.Time `json:"created_at"`
}

// Supplier is a master record referenced by InventoryItem.Supplier (by name,
// not owned — items keep their supplier string even if the record goes away).
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}
