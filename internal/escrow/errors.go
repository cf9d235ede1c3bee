package escrow

import "errors"

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrMilestoneMismatch = errors.New("milestone amounts do not sum to total")
	ErrNotFound          = errors.New("escrow not found")
	ErrUnauthorized      = errors.New("caller is not authorized")
	ErrInvalidState      = errors.New("invalid state for this operation")
	ErrInsufficientFunds = errors.New("nothing approved or nothing buffered to pay out")
	ErrNotCancellable    = errors.New("escrow is not cancellable")

	// ErrAccountingInvariant means released exceeds funded, which no valid
	// sequence of operations can produce. Not recoverable for that record.
	ErrAccountingInvariant = errors.New("accounting invariant violated: released exceeds funded")

	// ErrReentrantCall is returned when a protected operation is entered
	// while another one is still running, typically because the asset
	// ledger transferred control back into the engine.
	ErrReentrantCall = errors.New("reentrant call into a protected operation")
)
