package repository

import (
	"context"

	"escrowd/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// JournalRepository persists emitted escrow events for audit. The core
// registry stays in memory; this table is the durable trail.
type JournalRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewJournalRepository(db *pgxpool.Pool, logger *zap.Logger) *JournalRepository {
	return &JournalRepository{db: db, logger: logger}
}

// Insert appends one event row. The payload is stored as JSONB so it can
// be queried by escrow id later.
func (r *JournalRepository) Insert(ctx context.Context, eventType string, payload []byte) error {
	query := `
        INSERT INTO escrow_events (event_type, payload, received_at)
        VALUES ($1, $2, NOW())
    `
	if _, err := r.db.Exec(ctx, query, eventType, payload); err != nil {
		r.logger.Error("Failed to insert journal entry",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// ListByEscrow returns the audit trail of one escrow, oldest first.
func (r *JournalRepository) ListByEscrow(ctx context.Context, escrowID uint64) ([]model.JournalEntry, error) {
	query := `
        SELECT id, event_type, payload, received_at
        FROM escrow_events
        WHERE (payload->>'escrow_id')::bigint = $1
        ORDER BY id ASC
    `
	rows, err := r.db.Query(ctx, query, escrowID)
	if err != nil {
		r.logger.Error("Failed to list journal entries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []model.JournalEntry
	for rows.Next() {
		var e model.JournalEntry
		if err := rows.Scan(&e.ID, &e.EventType, &e.Payload, &e.ReceivedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
