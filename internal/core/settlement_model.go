package core

type SettlementKind string

const (
	// SettlementOrder settles a pending order: decrements stock for every
	// order line and transitions the order to completed.
	SettlementOrder SettlementKind = "order_completion"
	// SettlementDirectSale settles a point-of-sale cart with no backing
	// order record.
	SettlementDirectSale SettlementKind = "direct_sale"
)

// SettlementLine is one (item, quantity) pair to settle. Name is carried
// from the producer so rejections can name the item even when the row is
// missing; the engine never trusts it for anything else.
type SettlementLine struct {
	ItemID   string
	Name     string
	Quantity int
}

// SettlementRequest is the unit of work for the settlement engine. It is
// transient: built by a producer, applied once, never persisted itself.
// ReferenceID is the order id for SettlementOrder and the generated sale id
// for SettlementDirectSale. For SettlementOrder, Lines is left empty and
// the engine reads the order's own lines inside the transaction; for
// SettlementDirectSale the producer supplies Lines directly.
//
// The engine trusts that quantities are positive and item ids are distinct
// within a request, but always re-validates existence and availability
// against the ledger.
type SettlementRequest struct {
	RequestID   string
	Kind        SettlementKind
	ReferenceID string
	Lines       []SettlementLine
}

// SettlementResult reports a committed settlement. Alerts holds one
// human-readable string per item whose new quantity landed in
// (0, min_stock_alert]; it is computed from the committed quantities and is
// always empty for failed settlements (failures return an error instead).
type SettlementResult struct {
	Message string   `json:"message"`
	Alerts  []string `json:"alerts"`
}
