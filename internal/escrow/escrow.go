package escrow

// MilestoneStatus tracks the payout lifecycle of a single milestone.
type MilestoneStatus string

const (
	MilestonePending        MilestoneStatus = "pending"
	MilestoneApproved       MilestoneStatus = "approved"
	MilestonePartialRelease MilestoneStatus = "partial_release"
	MilestoneReleased       MilestoneStatus = "released"
	MilestoneCanceled       MilestoneStatus = "canceled"
)

// Status is the coarse escrow lifecycle indicator. It is informational:
// release and cancel do not fully gate on it. Completed, Disputed and
// Resolved are reserved variants; no transition currently produces them.
type Status string

const (
	StatusUnfunded   Status = "unfunded"
	StatusFunded     Status = "funded"
	StatusInprogress Status = "inprogress"
	StatusCompleted  Status = "completed"
	StatusRefunded   Status = "refunded"
	StatusDisputed   Status = "disputed"
	StatusResolved   Status = "resolved"
)

// Milestone is one payable unit of work. Amount is fixed at creation.
// AmountReleased only grows and never exceeds Amount; while the status is
// partial_release, AmountReleased + BalanceToRelease == Amount.
type Milestone struct {
	Amount           uint64          `json:"amount"`
	BalanceToRelease uint64          `json:"balance_to_release"`
	AmountReleased   uint64          `json:"amount_released"`
	Status           MilestoneStatus `json:"status"`
	CreatedAt        uint64          `json:"created_at"`
	ApprovedAt       uint64          `json:"approved_at"`
	ReleasedAt       uint64          `json:"released_at"`
}

// outstanding is the value still owed once the client has authorized the
// milestone: the full amount before any payout, the leftover balance after
// a partial one, zero otherwise.
func (m *Milestone) outstanding() uint64 {
	switch m.Status {
	case MilestoneApproved:
		return m.Amount
	case MilestonePartialRelease:
		return m.BalanceToRelease
	default:
		return 0
	}
}

// Escrow is one client/freelancer engagement. Client, Freelancer, Asset,
// TotalAmount, Cancellable and the per-milestone amounts are immutable
// after creation; FundedAmount and ReleasedAmount only grow, and
// ReleasedAmount never exceeds FundedAmount.
type Escrow struct {
	ID             uint64      `json:"id"`
	Client         string      `json:"client"`
	Freelancer     string      `json:"freelancer"`
	Asset          string      `json:"asset"`
	TotalAmount    uint64      `json:"total_amount"`
	FundedAmount   uint64      `json:"funded_amount"`
	ReleasedAmount uint64      `json:"released_amount"`
	Status         Status      `json:"status"`
	Cancellable    bool        `json:"cancellable"`
	CreatedAt      uint64      `json:"created_at"`
	Milestones     []Milestone `json:"milestones"`
}

// clone returns a deep copy of the record.
func (e *Escrow) clone() Escrow {
	out := *e
	out.Milestones = make([]Milestone, len(e.Milestones))
	copy(out.Milestones, e.Milestones)
	return out
}
