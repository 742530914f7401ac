package core

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Business rejections. Terminal: retrying cannot succeed, so the retry
// supervisor must never touch them.
var (
	ErrItemNotFound        = errors.New("item not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrOrderAlreadySettled = errors.New("order already settled")
	ErrDuplicateItem       = errors.New("item id already registered")
)

// ErrRetryExhausted wraps the last transient store failure once the retry
// budget is spent. Present it to users as "could not complete, try again";
// the wrapped cause stays available for logs.
var ErrRetryExhausted = errors.New("could not complete, try again")

// IsBusinessRejection reports whether err is a terminal domain rejection as
// opposed to a store failure. Adapters use this to pick a response class.
func IsBusinessRejection(err error) bool {
	return errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrOrderAlreadySettled) ||
		errors.Is(err, ErrDuplicateItem)
}

// IsTransientStoreError reports whether err is a connectivity or contention
// failure from the store that a fresh attempt may survive: serialization
// failure (40001), deadlock (40P01), admin shutdown (57P01), connection
// exceptions (class 08), network errors, and requests pgx knows never
// reached the server. Business rejections are never transient.
func IsTransientStoreError(err error) bool {
	if err == nil || IsBusinessRejection(err) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "57P01":
			return true
		}
		return strings.HasPrefix(pgErr.Code, "08")
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// isUniqueViolation reports a Postgres unique_violation (23505), raised when
// an insert collides with an existing primary key.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// InvariantViolationError reports a reconciliation mismatch between an
// item's ledger quantity and the summed quantity changes of its history.
// It should never occur in correct operation; callers log it distinctly
// from ordinary failures for operational triage.
type InvariantViolationError struct {
	ItemID     string `json:"item_id"`
	Quantity   int    `json:"quantity"`
	HistorySum int    `json:"history_sum"`
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("reconciliation violation for item %s: ledger quantity %d, history sum %d",
		e.ItemID, e.Quantity, e.HistorySum)
}
