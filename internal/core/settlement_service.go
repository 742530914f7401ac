package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SettlementService applies settlement requests against the stock ledger.
//
// A settlement is one atomic unit of work: every referenced item is read and
// validated inside a single transaction, and on success three effect classes
// commit together: the quantity decrements, one audit entry per item, and the
// request's own state transition (order marked completed, or the sale
// recorded through its audit entries). A failed validation aborts the whole
// unit; no item is ever partially decremented.
//
// Transient store failures (connectivity, serialization aborts) are retried
// per the configured RetryPolicy. Business rejections (ErrItemNotFound,
// ErrInsufficientStock, ErrOrderAlreadySettled) are terminal and returned
// unretried. Low-stock alerts are computed from the committed quantities and
// handed to the AlertSink strictly after commit.
type SettlementService interface {
	// Settle runs one settlement request to completion. It blocks until the
	// attempt fully commits or fully fails; there is no partial result.
	Settle(ctx context.Context, req SettlementRequest) (*SettlementResult, error)

	// ProcessDirectSale settles a counter sale that has no pre-existing
	// order. A short sale id is generated and recorded in each audit entry.
	ProcessDirectSale(ctx context.Context, lines []SettlementLine) (*SettlementResult, error)
}

type settlementService struct {
	store  *LedgerStore
	policy RetryPolicy
	sink   AlertSink
}

// NewSettlementService wires the engine to its store, retry policy, and
// alert sink. A nil sink falls back to LogAlertSink.
func NewSettlementService(store *LedgerStore, policy RetryPolicy, sink AlertSink) SettlementService {
	if sink == nil {
		sink = LogAlertSink{}
	}
	return &settlementService{store: store, policy: policy, sink: sink}
}

func (s *settlementService) Settle(ctx context.Context, req SettlementRequest) (*SettlementResult, error) {
	var result *SettlementResult
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		return s.store.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			res, err := s.settleInTx(ctx, tx, req)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.emitAlerts(ctx, result.Alerts)
	return result, nil
}

func (s *settlementService) ProcessDirectSale(ctx context.Context, lines []SettlementLine) (*SettlementResult, error) {
	saleID := uuid.NewString()[:8]
	return s.Settle(ctx, SettlementRequest{
		RequestID:   saleID,
		Kind:        SettlementDirectSale,
		ReferenceID: saleID,
		Lines:       lines,
	})
}

// settleInTx is the transaction body: read everything, validate everything,
// then write everything. It holds no state between attempts, so a retried
// transaction re-runs it from scratch against fresh reads. Alerts are only
// computed here, never emitted; emission happens after commit.
func (s *settlementService) settleInTx(ctx context.Context, tx pgx.Tx, req SettlementRequest) (*SettlementResult, error) {
	var (
		lines     []SettlementLine
		message   string
		entryType EntryType
		details   string
	)

	switch req.Kind {
	case SettlementOrder:
		order, err := s.store.LockOrderTx(ctx, tx, req.ReferenceID)
		if err != nil {
			return nil, err
		}
		if order.Status == OrderStatusCompleted {
			return nil, fmt.Errorf("%w: %s", ErrOrderAlreadySettled, order.ID)
		}
		orderLines, err := s.store.OrderLinesQ(ctx, tx, order.ID)
		if err != nil {
			return nil, err
		}
		for _, l := range orderLines {
			lines = append(lines, SettlementLine{ItemID: l.ItemID, Name: l.Name, Quantity: l.Quantity})
		}
		message = fmt.Sprintf("order %q completed", order.Title)
		entryType = EntryOrderSale
		details = fmt.Sprintf("Order ID: %s", order.ID)
	case SettlementDirectSale:
		lines = req.Lines
		message = fmt.Sprintf("sale %s processed, stock updated", req.ReferenceID)
		entryType = EntryDirectSale
		details = fmt.Sprintf("Sale ID: %s", req.ReferenceID)
	default:
		return nil, fmt.Errorf("unknown settlement kind: %s", req.Kind)
	}

	lines = collapseLines(lines)
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}

	items, err := s.store.LockItemsTx(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	for _, l := range lines {
		it, ok := items[l.ItemID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, describeLine(l))
		}
		if it.Quantity < l.Quantity {
			return nil, fmt.Errorf("%w for %q: available %d, requested %d",
				ErrInsufficientStock, it.Name, it.Quantity, l.Quantity)
		}
	}

	var alerts []string
	for _, l := range lines {
		it := items[l.ItemID]
		newQty := it.Quantity - l.Quantity
		if err := s.store.UpdateItemQuantityTx(ctx, tx, it.ID, newQty); err != nil {
			return nil, err
		}
		if err := s.store.AppendHistoryTx(ctx, tx, it.ID, entryType, -l.Quantity, details); err != nil {
			return nil, err
		}
		if it.MinStockAlert > 0 && newQty > 0 && newQty <= it.MinStockAlert {
			alerts = append(alerts, fmt.Sprintf("%q has reached the minimum stock threshold (%d/%d)",
				it.Name, newQty, it.MinStockAlert))
		}
	}

	if req.Kind == SettlementOrder {
		if err := s.store.MarkOrderCompletedTx(ctx, tx, req.ReferenceID); err != nil {
			return nil, err
		}
	}

	return &SettlementResult{Message: message, Alerts: alerts}, nil
}

// emitAlerts forwards alert strings to the sink. Runs only after commit; a
// sink failure is the sink's problem and can never unwind the settlement.
func (s *settlementService) emitAlerts(ctx context.Context, alerts []string) {
	for _, msg := range alerts {
		s.sink.Notify(ctx, msg)
	}
}

// collapseLines folds repeated references to the same item into one line per
// item, preserving first-appearance order.
func collapseLines(lines []SettlementLine) []SettlementLine {
	idx := make(map[string]int, len(lines))
	out := make([]SettlementLine, 0, len(lines))
	for _, l := range lines {
		if i, ok := idx[l.ItemID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.ItemID] = len(out)
		out = append(out, l)
	}
	return out
}

func describeLine(l SettlementLine) string {
	if l.Name != "" {
		return fmt.Sprintf("%q", l.Name)
	}
	return l.ItemID
}
