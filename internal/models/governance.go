package models

import "time"

// ============================================================================
// GOVERNANCE
// ============================================================================

// Proposal is a shareholder proposal to change one governable parameter.
// Vote weights are share balances read at vote time. Immutable once the
// status leaves pending.
type Proposal struct {
	ID           uint64         `json:"id" db:"id"`
	ParamName    string         `json:"param_name" db:"param_name"`
	NewValue     float64        `json:"new_value" db:"new_value"`
	Proposer     string         `json:"proposer" db:"proposer"`
	VotesFor     float64        `json:"votes_for" db:"votes_for"`
	VotesAgainst float64        `json:"votes_against" db:"votes_against"`
	Deadline     time.Time      `json:"deadline" db:"deadline"`
	Status       ProposalStatus `json:"status" db:"status"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// Params holds the live governable parameters.
type Params struct {
	MinPremium         float64       `json:"min_premium"`
	PolicyDuration     time.Duration `json:"policy_duration"`
	ProtocolFeePercent float64       `json:"protocol_fee_percent"`
}
