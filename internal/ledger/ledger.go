// Package ledger models the external asset-transfer collaborator: an
// opaque balance ledger keyed by account and asset identifier. The escrow
// engine only ever moves value through it; balances themselves are owned
// by whatever system backs the implementation.
package ledger

import (
	"context"
	"errors"
)

var ErrInsufficientBalance = errors.New("insufficient ledger balance")

// Ledger moves value between accounts of one asset. A failed transfer
// leaves both balances unmodified.
type Ledger interface {
	Transfer(ctx context.Context, from, to, asset string, amount uint64) error
	Balance(ctx context.Context, account, asset string) (uint64, error)
}
