package escrow

// Event types. The broker-backed sink uses them directly as routing keys.
const (
	EventEscrowCreated     = "escrow.created"
	EventFunded            = "escrow.funded"
	EventMilestoneApproved = "escrow.milestone_approved"
	EventReleased          = "escrow.released"
	EventPartialRelease    = "escrow.partial_release"
	EventRefunded          = "escrow.refunded"
)

// Sink receives one structured record per completed state transition.
// Emission happens after state has committed; a failing sink is logged by
// the engine and never rolls an operation back.
type Sink interface {
	Emit(eventType string, payload any) error
}

type EscrowCreatedPayload struct {
	EscrowID    uint64 `json:"escrow_id"`
	Client      string `json:"client"`
	Freelancer  string `json:"freelancer"`
	Asset       string `json:"asset"`
	TotalAmount uint64 `json:"total_amount"`
}

type FundedPayload struct {
	EscrowID uint64 `json:"escrow_id"`
	Amount   uint64 `json:"amount"`
}

type MilestoneApprovedPayload struct {
	EscrowID uint64 `json:"escrow_id"`
	Index    int    `json:"index"`
	Amount   uint64 `json:"amount"`
}

// ReleasedPayload is shared by the released and partial_release events.
type ReleasedPayload struct {
	EscrowID uint64 `json:"escrow_id"`
	Amount   uint64 `json:"amount"`
	To       string `json:"to"`
}

type RefundedPayload struct {
	EscrowID uint64 `json:"escrow_id"`
	Amount   uint64 `json:"amount"`
	To       string `json:"to"`
}
