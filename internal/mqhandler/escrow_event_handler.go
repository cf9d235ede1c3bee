package mqhandler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"go.uber.org/zap"

	"escrowd/internal/metrics"
	"escrowd/internal/repository"
	"escrowd/internal/util"
)

// EscrowEventHandler journals every emitted escrow event into Postgres.
// Redeliveries are deduplicated by message digest.
type EscrowEventHandler struct {
	journal *repository.JournalRepository
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewEscrowEventHandler(journal *repository.JournalRepository, deduper *util.Deduper, logger *zap.Logger) *EscrowEventHandler {
	return &EscrowEventHandler{
		journal: journal,
		deduper: deduper,
		logger:  logger,
	}
}

// Handle persists one event. Returning an error requeues the delivery.
func (h *EscrowEventHandler) Handle(ctx context.Context, routingKey string, data json.RawMessage) error {
	if h.deduper != nil {
		digest := sha256.Sum256(data)
		key := routingKey + ":" + hex.EncodeToString(digest[:])
		if !h.deduper.AcquireOnce(ctx, "journal", key) {
			return nil
		}
	}

	if err := h.journal.Insert(ctx, routingKey, data); err != nil {
		h.logger.Error("Failed to journal escrow event",
			zap.String("event_type", routingKey),
			zap.Error(err),
		)
		return err
	}

	metrics.RecordEventJournaled(routingKey)
	h.logger.Debug("Escrow event journaled", zap.String("event_type", routingKey))
	return nil
}
