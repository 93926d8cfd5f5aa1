package services

import (
	"weathercover/internal/engine"
	"weathercover/internal/repository"
)

// poolState captures the current aggregate pool row for the mirror.
func poolState(e *engine.Engine) repository.PoolState {
	stats := e.Stats()
	params := e.Params()
	return repository.PoolState{
		OwnerID:               e.Owner(),
		DataAuthority:         e.DataAuthority(),
		TotalLiquidity:        stats.TotalLiquidity,
		TotalShares:           stats.TotalShares,
		ReservedFunds:         stats.ReservedFunds,
		ProtocolFees:          stats.ProtocolFees,
		UnattributedPremium:   stats.UnattributedPremium,
		TotalPremiums:         stats.TotalPremiumsCollected,
		TotalPayouts:          stats.TotalPayouts,
		MinPremium:            params.MinPremium,
		PolicyDurationSeconds: int64(params.PolicyDuration.Seconds()),
		ProtocolFeePercent:    params.ProtocolFeePercent,
	}
}
