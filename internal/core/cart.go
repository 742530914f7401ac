package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ScanStatus classifies the outcome of one barcode interaction.
type ScanStatus string

const (
	ScanFound      ScanStatus = "found"
	ScanNotFound   ScanStatus = "not_found"
	ScanAdded      ScanStatus = "added"
	ScanOutOfStock ScanStatus = "out_of_stock"
	ScanCapped     ScanStatus = "capped"
	ScanError      ScanStatus = "error"
)

// ScanResult reports what happened to a scan or a cart addition. Item is
// set whenever the barcode matched a catalog item.
type ScanResult struct {
	Status  ScanStatus     `json:"status"`
	Item    *InventoryItem `json:"item,omitempty"`
	Message string         `json:"message"`
}

// CartLine is one accumulated entry in a sale or order being built.
// Available records the item's stock level when it entered the cart; the
// cart caps Quantity at that figure.
type CartLine struct {
	ItemID        string          `json:"item_id"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Available     int             `json:"available"`
}

// Cart accumulates lines for a direct sale or a new order. It holds no
// connection to the store: callers look items up and feed them in, and the
// cap is only as fresh as the item data supplied. The settlement engine
// re-validates against live stock regardless. Not safe for concurrent use.
type Cart struct {
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// Add puts qty units of item into the cart, merging with an existing line
// for the same item. The addition is all-or-nothing: if the merged quantity
// would exceed the item's stock, nothing changes and the result says so.
func (c *Cart) Add(item *InventoryItem, qty int) ScanResult {
	if item == nil {
		return ScanResult{Status: ScanError, Message: "no item to add"}
	}
	if qty <= 0 {
		return ScanResult{Status: ScanError, Message: "quantity must be positive"}
	}
	if item.Quantity <= 0 {
		return ScanResult{Status: ScanOutOfStock, Item: item,
			Message: fmt.Sprintf("out of stock for %q", item.Name)}
	}

	for i := range c.lines {
		if c.lines[i].ItemID != item.ID {
			continue
		}
		newTotal := c.lines[i].Quantity + qty
		if newTotal > item.Quantity {
			return ScanResult{Status: ScanCapped, Item: item,
				Message: fmt.Sprintf("no more stock available for %q (in cart: %d, stock: %d)",
					item.Name, c.lines[i].Quantity, item.Quantity)}
		}
		c.lines[i].Quantity = newTotal
		c.lines[i].Available = item.Quantity
		return ScanResult{Status: ScanAdded, Item: item,
			Message: fmt.Sprintf("%q quantity updated to %d", item.Name, newTotal)}
	}

	if qty > item.Quantity {
		return ScanResult{Status: ScanCapped, Item: item,
			Message: fmt.Sprintf("insufficient stock for %q, available: %d", item.Name, item.Quantity)}
	}
	c.lines = append(c.lines, CartLine{
		ItemID:        item.ID,
		Name:          item.Name,
		Quantity:      qty,
		PurchasePrice: item.PurchasePrice,
		SalePrice:     item.SalePrice,
		Available:     item.Quantity,
	})
	return ScanResult{Status: ScanAdded, Item: item,
		Message: fmt.Sprintf("%q added", item.Name)}
}

// Remove drops the line for itemID, if present.
func (c *Cart) Remove(itemID string) {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the cart contents.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// SettlementLines converts the cart into direct-sale settlement lines.
func (c *Cart) SettlementLines() []SettlementLine {
	lines := make([]SettlementLine, 0, len(c.lines))
	for _, l := range c.lines {
		lines = append(lines, SettlementLine{ItemID: l.ItemID, Name: l.Name, Quantity: l.Quantity})
	}
	return lines
}

// OrderLineInputs converts the cart into order-creation inputs.
func (c *Cart) OrderLineInputs() []OrderLineInput {
	lines := make([]OrderLineInput, 0, len(c.lines))
	for _, l := range c.lines {
		lines = append(lines, OrderLineInput{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return lines
}

// Total is the sale value of the cart, sale price times quantity per line.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.SalePrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Scanner resolves barcodes against the item catalog for the scan-driven
// flows: inventory checks and point-of-sale cart building.
type Scanner struct {
	items ItemService
}

func NewScanner(items ItemService) *Scanner {
	return &Scanner{items: items}
}

// Lookup classifies a scanned barcode: empty input, a matched item, or an
// unknown code. Store failures are returned as errors; an unknown barcode
// is a normal outcome, not an error.
func (s *Scanner) Lookup(ctx context.Context, barcode string) (ScanResult, error) {
	if barcode == "" {
		return ScanResult{Status: ScanError, Message: "barcode cannot be empty"}, nil
	}
	item, err := s.items.GetItem(ctx, barcode)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ScanResult{Status: ScanNotFound,
				Message: fmt.Sprintf("no product found for code %q", barcode)}, nil
		}
		return ScanResult{}, err
	}
	return ScanResult{Status: ScanFound, Item: item,
		Message: fmt.Sprintf("found %q for code %q", item.Name, barcode)}, nil
}

// AddToCart is the point-of-sale scan: look the barcode up and add one unit
// to the cart, capped at current stock.
func (s *Scanner) AddToCart(ctx context.Context, cart *Cart, barcode string) (ScanResult, error) {
	res, err := s.Lookup(ctx, barcode)
	if err != nil {
		return ScanResult{}, err
	}
	if res.Status != ScanFound {
		return res, nil
	}
	return cart.Add(res.Item, 1), nil
}
