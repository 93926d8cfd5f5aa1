package models

import "time"

// ============================================================================
// LIQUIDITY POOL
// ============================================================================

// LPPosition is one liquidity provider's stake in the pool.
type LPPosition struct {
	Provider  string    `json:"provider" db:"provider"`
	Deposited float64   `json:"deposited" db:"deposited"`
	Shares    float64   `json:"shares" db:"shares"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PoolStats is a consistent snapshot of the pool-level counters.
type PoolStats struct {
	TotalLiquidity         float64 `json:"total_liquidity" db:"total_liquidity"`
	TotalShares            float64 `json:"total_shares" db:"total_shares"`
	ReservedFunds          float64 `json:"reserved_funds" db:"reserved_funds"`
	ProtocolFees           float64 `json:"protocol_fees" db:"protocol_fees"`
	UnattributedPremium    float64 `json:"unattributed_premium" db:"unattributed_premium"`
	TotalPremiumsCollected float64 `json:"total_premiums_collected" db:"total_premiums_collected"`
	TotalPayouts           float64 `json:"total_payouts" db:"total_payouts"`
	ActivePolicies         int     `json:"active_policies" db:"active_policies"`
	SharePrice             float64 `json:"share_price" db:"-"`
}

// Payout is a journal entry for a transfer out of the pool: a claim payout,
// a cancellation refund, or a protocol fee withdrawal.
type Payout struct {
	ID        string    `json:"id" db:"id"`
	PolicyID  *uint64   `json:"policy_id,omitempty" db:"policy_id"`
	Recipient string    `json:"recipient" db:"recipient"`
	Amount    float64   `json:"amount" db:"amount"`
	Kind      string    `json:"kind" db:"kind"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const (
	PayoutClaim        = "claim"
	PayoutRefund       = "refund"
	PayoutWithdrawal   = "withdrawal"
	PayoutProtocolFees = "protocol_fees"
)
