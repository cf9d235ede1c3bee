package ledger_test

import (
	"context"
	"errors"
	"testing"

	"escrowd/internal/ledger"
)

func TestMemoryLedgerTransfer(t *testing.T) {
	l := ledger.NewMemoryLedger()
	l.Credit("alice", "usdc", 100)
	ctx := context.Background()

	if err := l.Transfer(ctx, "alice", "bob", "usdc", 60); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	a, _ := l.Balance(ctx, "alice", "usdc")
	b, _ := l.Balance(ctx, "bob", "usdc")
	if a != 40 || b != 60 {
		t.Fatalf("balances after transfer: alice=%d bob=%d", a, b)
	}
}

func TestMemoryLedgerInsufficientBalance(t *testing.T) {
	l := ledger.NewMemoryLedger()
	l.Credit("alice", "usdc", 10)
	ctx := context.Background()

	err := l.Transfer(ctx, "alice", "bob", "usdc", 11)
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	a, _ := l.Balance(ctx, "alice", "usdc")
	b, _ := l.Balance(ctx, "bob", "usdc")
	if a != 10 || b != 0 {
		t.Fatalf("failed transfer moved funds: alice=%d bob=%d", a, b)
	}
}

func TestMemoryLedgerAssetsAreIsolated(t *testing.T) {
	l := ledger.NewMemoryLedger()
	l.Credit("alice", "usdc", 100)
	ctx := context.Background()

	if err := l.Transfer(ctx, "alice", "bob", "dai", 1); !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance across assets, got %v", err)
	}
	b, _ := l.Balance(ctx, "alice", "dai")
	if b != 0 {
		t.Fatalf("dai balance = %d, want 0", b)
	}
}
