package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
)

// Order is a pending or completed customer order. There is no cancelled
// status: cancellation deletes the record outright.
//
//	processing → completed (via settlement)
//	processing → deleted   (via CancelOrder)
type Order struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Status      OrderStatus     `json:"status"`
	Price       decimal.Decimal `json:"price"` // sum of line sale totals at creation time
	Lines       []OrderLine     `json:"lines"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"` // set only on completion
}

// OrderLine snapshots one ingredient at order-creation time. PurchasePrice
// and SalePrice are copied from the inventory item when the order is created
// and never refreshed, so settled orders report the prices that were current
// when they were taken, not today's.
type OrderLine struct {
	ID            int64           `json:"id"`
	OrderID       string          `json:"order_id"`
	ItemID        string          `json:"item_id"`
	Name          string          `json:"name"` // snapshotted from the item
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
}

// OrderLineInput is used when creating a new order. Prices are never accepted
// from the caller; they are snapshotted from the current item rows.
type OrderLineInput struct {
	ItemID   string
	Quantity int
}
