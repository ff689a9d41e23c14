package shared

import "errors"

var (
	// ErrNotFound indicates a catalog, directory or ledger entry is missing.
	ErrNotFound = errors.New("not found")
	// ErrIdempotencyConflict indicates the request key was already used.
	ErrIdempotencyConflict = errors.New("idempotent request already processed")
	// ErrInvalidInput indicates a well-formed request the shop cannot apply,
	// such as taking more stock than is on hand.
	ErrInvalidInput = errors.New("invalid input")
)
