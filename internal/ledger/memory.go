package ledger

import (
	"context"
	"sync"
)

// MemoryLedger is a process-local Ledger for tests and single-node runs.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]map[string]uint64 // asset -> account -> balance
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]map[string]uint64)}
}

// Credit adds funds out of thin air so tests and local setups can seed
// balances.
func (l *MemoryLedger) Credit(account, asset string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts(asset)[account] += amount
}

func (l *MemoryLedger) accounts(asset string) map[string]uint64 {
	m, ok := l.balances[asset]
	if !ok {
		m = make(map[string]uint64)
		l.balances[asset] = m
	}
	return m
}

func (l *MemoryLedger) Transfer(ctx context.Context, from, to, asset string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := l.accounts(asset)
	if m[from] < amount {
		return ErrInsufficientBalance
	}
	m[from] -= amount
	m[to] += amount
	return nil
}

func (l *MemoryLedger) Balance(ctx context.Context, account, asset string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts(asset)[account], nil
}
