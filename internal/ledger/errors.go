package ledger

import (
	"errors"

	"github.com/odyssey-erp/shopledger/internal/money"
)

// Validation errors surfaced to the caller for correction. None are retried.
var (
	ErrInvalidDiscount     = errors.New("discount must be between zero and the subtotal")
	ErrPaidExceedsTotal    = errors.New("paid amount cannot exceed total")
	ErrPaidRequired        = errors.New("paid amount is required for partial payment")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrEmptyCart           = errors.New("cart has no items")
	ErrMissingCounterparty = errors.New("counterparty is required")
	ErrInvalidLine         = errors.New("invalid line item")
	ErrInvalidMode         = errors.New("unknown payment mode")

	ErrOverReturn         = errors.New("returned quantity exceeds purchased quantity")
	ErrNothingReturned    = errors.New("at least one item must be returned")
	ErrExchangeRequired   = errors.New("exchange requires replacement items")
	ErrUnexpectedExchange = errors.New("replacement items are only allowed for exchanges")
	ErrInvalidResolution  = errors.New("unknown return resolution")

	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrUnknownStatus     = errors.New("unknown status")
)

// ErrNegativeResult is re-exported so callers can match money failures
// without importing the money package.
var ErrNegativeResult = money.ErrNegativeResult

// IsValidation reports whether err is a caller-correctable validation failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidDiscount, ErrPaidExceedsTotal, ErrPaidRequired, ErrInvalidAmount,
		ErrEmptyCart, ErrMissingCounterparty, ErrInvalidLine, ErrInvalidMode,
		ErrOverReturn, ErrNothingReturned, ErrExchangeRequired, ErrUnexpectedExchange,
		ErrInvalidResolution, ErrUnknownStatus, ErrNegativeResult,
		money.ErrPrecision, money.ErrInvalidAmount,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Reason returns a short metric label for a validation failure.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidDiscount):
		return "invalid_discount"
	case errors.Is(err, ErrPaidExceedsTotal):
		return "paid_exceeds_total"
	case errors.Is(err, ErrPaidRequired):
		return "paid_required"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrMissingCounterparty):
		return "missing_counterparty"
	case errors.Is(err, ErrOverReturn):
		return "over_return"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case IsValidation(err):
		return "invalid_input"
	default:
		return "internal"
	}
}
