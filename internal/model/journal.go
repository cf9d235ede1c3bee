package model

import (
	"encoding/json"
	"time"
)

// JournalEntry is one escrow event persisted for audit.
type JournalEntry struct {
	ID         int             `json:"id"`
	EventType  string          `json:"event_type"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"received_at"`
}
