package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"weathercover/internal/models"

	"github.com/jmoiron/sqlx"
)

type PoolRepository struct {
	db *sqlx.DB
}

func NewPoolRepository(db *sqlx.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

// PoolState is the single-row aggregate snapshot of the pool plus the
// live parameters and authority identity.
type PoolState struct {
	OwnerID               string  `db:"owner_id"`
	DataAuthority         string  `db:"data_authority"`
	TotalLiquidity        float64 `db:"total_liquidity"`
	TotalShares           float64 `db:"total_shares"`
	ReservedFunds         float64 `db:"reserved_funds"`
	ProtocolFees          float64 `db:"protocol_fees"`
	UnattributedPremium   float64 `db:"unattributed_premium"`
	TotalPremiums         float64 `db:"total_premiums_collected"`
	TotalPayouts          float64 `db:"total_payouts"`
	MinPremium            float64 `db:"min_premium"`
	PolicyDurationSeconds int64   `db:"policy_duration_seconds"`
	ProtocolFeePercent    float64 `db:"protocol_fee_percent"`
}

// Save overwrites the singleton pool row.
func (r *PoolRepository) Save(state *PoolState) error {
	query := `
		INSERT INTO pool_state (
			id, owner_id, data_authority, total_liquidity, total_shares,
			reserved_funds, protocol_fees, unattributed_premium,
			total_premiums_collected, total_payouts, min_premium,
			policy_duration_seconds, protocol_fee_percent, updated_at
		) VALUES (
			1, :owner_id, :data_authority, :total_liquidity, :total_shares,
			:reserved_funds, :protocol_fees, :unattributed_premium,
			:total_premiums_collected, :total_payouts, :min_premium,
			:policy_duration_seconds, :protocol_fee_percent, NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			data_authority = EXCLUDED.data_authority,
			total_liquidity = EXCLUDED.total_liquidity,
			total_shares = EXCLUDED.total_shares,
			reserved_funds = EXCLUDED.reserved_funds,
			protocol_fees = EXCLUDED.protocol_fees,
			unattributed_premium = EXCLUDED.unattributed_premium,
			total_premiums_collected = EXCLUDED.total_premiums_collected,
			total_payouts = EXCLUDED.total_payouts,
			min_premium = EXCLUDED.min_premium,
			policy_duration_seconds = EXCLUDED.policy_duration_seconds,
			protocol_fee_percent = EXCLUDED.protocol_fee_percent,
			updated_at = NOW()`

	_, err := r.db.NamedExec(query, state)
	if err != nil {
		return fmt.Errorf("failed to save pool state: %w", err)
	}

	return nil
}

// Get returns the persisted pool state, or nil when nothing was saved
// yet (fresh database).
func (r *PoolRepository) Get() (*PoolState, error) {
	var state PoolState
	query := `
		SELECT owner_id, data_authority, total_liquidity, total_shares,
		       reserved_funds, protocol_fees, unattributed_premium,
		       total_premiums_collected, total_payouts, min_premium,
		       policy_duration_seconds, protocol_fee_percent
		FROM pool_state WHERE id = 1`

	err := r.db.Get(&state, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pool state: %w", err)
	}

	return &state, nil
}

// StatsFromState converts a persisted row back into pool counters.
func StatsFromState(state *PoolState) models.PoolStats {
	return models.PoolStats{
		TotalLiquidity:         state.TotalLiquidity,
		TotalShares:            state.TotalShares,
		ReservedFunds:          state.ReservedFunds,
		ProtocolFees:           state.ProtocolFees,
		UnattributedPremium:    state.UnattributedPremium,
		TotalPremiumsCollected: state.TotalPremiums,
		TotalPayouts:           state.TotalPayouts,
	}
}
