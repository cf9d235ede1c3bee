package escrow

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"escrowd/internal/ledger"
)

// CustodyAccount names the ledger account holding an escrow's funds.
func CustodyAccount(id uint64) string {
	return fmt.Sprintf("escrow:%d", id)
}

// Engine implements the escrow state machine over the registry. Every
// public operation executes as one atomic unit: validation failures abort
// with zero state mutated, and operations that invoke the external asset
// ledger hold a call-scoped reentrancy guard for their full duration.
type Engine struct {
	registry *Registry
	ledger   ledger.Ledger
	sink     Sink
	clock    Clock
	logger   *zap.Logger

	// mu serializes record bookkeeping. guard is the reentrancy flag for
	// the operations that call out to the asset ledger: checked at entry,
	// cleared on every exit path.
	mu    sync.Mutex
	guard atomic.Bool
}

func NewEngine(registry *Registry, lgr ledger.Ledger, sink Sink, clock Clock, logger *zap.Logger) *Engine {
	return &Engine{
		registry: registry,
		ledger:   lgr,
		sink:     sink,
		clock:    clock,
		logger:   logger,
	}
}

// enter claims the reentrancy guard. The asset ledger may transfer control
// back into the engine while a protected operation is still on the stack;
// any such nested call fails here instead of observing half-finished state.
func (e *Engine) enter() error {
	if !e.guard.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

func (e *Engine) exit() {
	e.guard.Store(false)
}

func (e *Engine) emit(eventType string, payload any) {
	if err := e.sink.Emit(eventType, payload); err != nil {
		e.logger.Warn("event emission failed",
			zap.String("event", eventType),
			zap.Error(err),
		)
	}
}

// Create validates a milestone breakdown and appends a new escrow record.
// The caller becomes the escrow's client. Milestone amounts must sum to
// the total, which must be nonzero.
func (e *Engine) Create(ctx context.Context, caller, freelancer, asset string, totalAmount uint64, milestoneAmounts []uint64, cancellable bool) (uint64, error) {
	if totalAmount == 0 {
		return 0, ErrInvalidAmount
	}
	var sum uint64
	for _, a := range milestoneAmounts {
		sum += a
	}
	if sum != totalAmount {
		return 0, ErrMilestoneMismatch
	}

	now := e.clock.Now()
	milestones := make([]Milestone, len(milestoneAmounts))
	for i, a := range milestoneAmounts {
		milestones[i] = Milestone{
			Amount:    a,
			Status:    MilestonePending,
			CreatedAt: now,
		}
	}

	rec := &Escrow{
		Client:      caller,
		Freelancer:  freelancer,
		Asset:       asset,
		TotalAmount: totalAmount,
		Status:      StatusUnfunded,
		Cancellable: cancellable,
		CreatedAt:   now,
		Milestones:  milestones,
	}
	id := e.registry.Append(rec)

	e.logger.Info("escrow created",
		zap.Uint64("escrow_id", id),
		zap.String("client", caller),
		zap.String("freelancer", freelancer),
		zap.String("asset", asset),
		zap.Uint64("total_amount", totalAmount),
		zap.Int("milestones", len(milestones)),
	)
	e.emit(EventEscrowCreated, EscrowCreatedPayload{
		EscrowID:    id,
		Client:      caller,
		Freelancer:  freelancer,
		Asset:       asset,
		TotalAmount: totalAmount,
	})
	return id, nil
}

// Fund moves amount from the caller's ledger balance into the escrow's
// custody account. The external debit happens before any bookkeeping, so a
// failed transfer leaves the record untouched. Deposits beyond the total
// are accepted; there is no overfunding cap.
func (e *Engine) Fund(ctx context.Context, caller string, id uint64, amount uint64) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	rec, err := e.registry.get(id)
	if err != nil {
		return err
	}
	if rec.Client != caller {
		return ErrUnauthorized
	}
	if amount == 0 {
		return ErrInvalidAmount
	}

	if err := e.ledger.Transfer(ctx, caller, CustodyAccount(id), rec.Asset, amount); err != nil {
		return fmt.Errorf("funding transfer: %w", err)
	}

	e.mu.Lock()
	rec.FundedAmount += amount
	if rec.FundedAmount >= rec.TotalAmount {
		rec.Status = StatusFunded
	} else {
		rec.Status = StatusInprogress
	}
	funded := rec.FundedAmount
	e.mu.Unlock()

	e.logger.Info("escrow funded",
		zap.Uint64("escrow_id", id),
		zap.Uint64("amount", amount),
		zap.Uint64("funded_amount", funded),
	)
	e.emit(EventFunded, FundedPayload{EscrowID: id, Amount: amount})
	return nil
}

// Approve marks a pending milestone as approved by the client. Approval is
// deliberately decoupled from funding sufficiency; a shortfall surfaces at
// release time instead.
func (e *Engine) Approve(ctx context.Context, caller string, id uint64, index int) error {
	rec, err := e.registry.get(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if index < 0 || index >= len(rec.Milestones) {
		e.mu.Unlock()
		return ErrNotFound
	}
	if rec.Client != caller {
		e.mu.Unlock()
		return ErrUnauthorized
	}
	m := &rec.Milestones[index]
	if m.Status != MilestonePending {
		e.mu.Unlock()
		return ErrInvalidState
	}
	m.Status = MilestoneApproved
	m.ApprovedAt = e.clock.Now()
	amount := m.Amount
	e.mu.Unlock()

	e.logger.Info("milestone approved",
		zap.Uint64("escrow_id", id),
		zap.Int("index", index),
		zap.Uint64("amount", amount),
	)
	e.emit(EventMilestoneApproved, MilestoneApprovedPayload{
		EscrowID: id,
		Index:    index,
		Amount:   amount,
	})
	return nil
}

// Release pays out as much as is currently both client-approved and backed
// by deposited cash, allocating strictly in ascending milestone order. The
// milestone that cannot be covered in full receives whatever remains and
// becomes a partial release; everything after it waits for a later call.
// Anyone may trigger a release; it only ever pays the freelancer.
func (e *Engine) Release(ctx context.Context, caller string, id uint64) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	rec, err := e.registry.get(id)
	if err != nil {
		return err
	}

	e.mu.Lock()

	if rec.Status != StatusFunded && rec.Status != StatusInprogress {
		e.mu.Unlock()
		return ErrInvalidState
	}

	var approved uint64
	for i := range rec.Milestones {
		approved += rec.Milestones[i].outstanding()
	}

	if rec.FundedAmount < rec.ReleasedAmount {
		e.mu.Unlock()
		return ErrAccountingInvariant
	}
	buffer := rec.FundedAmount - rec.ReleasedAmount

	toPay := approved
	if buffer < toPay {
		toPay = buffer
	}
	if toPay == 0 {
		e.mu.Unlock()
		return ErrInsufficientFunds
	}

	// The external transfer below can still fail; remember the prior state
	// of exactly the milestones this call pays. An approval can land while
	// the transfer is in flight (Approve only touches pending milestones,
	// which the waterfall never does), so the reversal must not restore
	// anything beyond this call's own writes.
	undo := make(map[int]Milestone)

	now := e.clock.Now()
	remaining := toPay
	partial := false
	for i := range rec.Milestones {
		if remaining == 0 {
			break
		}
		m := &rec.Milestones[i]
		outstanding := m.outstanding()
		if outstanding == 0 {
			continue
		}
		undo[i] = *m
		if outstanding <= remaining {
			m.AmountReleased += outstanding
			m.BalanceToRelease = 0
			m.Status = MilestoneReleased
			m.ReleasedAt = now
			remaining -= outstanding
		} else {
			m.AmountReleased += remaining
			m.BalanceToRelease = outstanding - remaining
			m.Status = MilestonePartialRelease
			remaining = 0
			partial = true
		}
	}
	rec.ReleasedAmount += toPay
	freelancer := rec.Freelancer
	asset := rec.Asset
	e.mu.Unlock()

	// Bookkeeping is committed; the transfer is the last effect of the
	// call. The guard keeps a misbehaving ledger from re-entering while
	// it runs.
	if err := e.ledger.Transfer(ctx, CustodyAccount(id), freelancer, asset, toPay); err != nil {
		e.mu.Lock()
		for i, m := range undo {
			rec.Milestones[i] = m
		}
		rec.ReleasedAmount -= toPay
		e.mu.Unlock()
		return fmt.Errorf("release transfer: %w", err)
	}

	event := EventReleased
	if partial {
		event = EventPartialRelease
	}
	e.logger.Info("escrow release",
		zap.Uint64("escrow_id", id),
		zap.String("caller", caller),
		zap.Uint64("amount", toPay),
		zap.String("to", freelancer),
		zap.Bool("partial", partial),
	)
	e.emit(event, ReleasedPayload{EscrowID: id, Amount: toPay, To: freelancer})
	return nil
}

// Cancel refunds all undisbursed funds to the client and terminates the
// escrow. Only possible while the escrow was created cancellable and every
// milestone is still pending; the terminal status is refunded and every
// milestone flips to canceled.
func (e *Engine) Cancel(ctx context.Context, caller string, id uint64) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	rec, err := e.registry.get(id)
	if err != nil {
		return err
	}

	e.mu.Lock()

	if rec.Client != caller {
		e.mu.Unlock()
		return ErrUnauthorized
	}
	if !rec.Cancellable {
		e.mu.Unlock()
		return ErrNotCancellable
	}
	for i := range rec.Milestones {
		if rec.Milestones[i].Status != MilestonePending {
			e.mu.Unlock()
			return ErrInvalidState
		}
	}

	refundable := rec.FundedAmount - rec.ReleasedAmount
	// Whole-record restore is safe here: the guard blocks other protected
	// calls, and with every milestone already canceled below, no approval
	// can commit while the refund transfer is in flight.
	undo := rec.clone()
	rec.Status = StatusRefunded
	for i := range rec.Milestones {
		rec.Milestones[i].Status = MilestoneCanceled
	}
	client := rec.Client
	asset := rec.Asset
	e.mu.Unlock()

	if refundable > 0 {
		if err := e.ledger.Transfer(ctx, CustodyAccount(id), client, asset, refundable); err != nil {
			e.mu.Lock()
			*rec = undo
			e.mu.Unlock()
			return fmt.Errorf("refund transfer: %w", err)
		}
	}

	e.logger.Info("escrow canceled",
		zap.Uint64("escrow_id", id),
		zap.Uint64("refunded", refundable),
		zap.String("to", client),
	)
	if refundable > 0 {
		e.emit(EventRefunded, RefundedPayload{EscrowID: id, Amount: refundable, To: client})
	}
	return nil
}

// Get returns a point-in-time copy of the escrow record.
func (e *Engine) Get(id uint64) (Escrow, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Snapshot(id)
}

// Count reports how many escrows exist.
func (e *Engine) Count() int {
	return e.registry.Count()
}
