package services

import (
	"context"
	"log/slog"

	"weathercover/internal/engine"
	"weathercover/internal/models"
	"weathercover/internal/observability"
	"weathercover/internal/worker"
)

// PoolService handles liquidity provider deposits, withdrawals, and the
// protocol fee accrual.
type PoolService struct {
	engine    *engine.Engine
	persistor *worker.Persistor
	metrics   *observability.Metrics
}

// NewPoolService creates a new pool service.
func NewPoolService(eng *engine.Engine, persistor *worker.Persistor, metrics *observability.Metrics) *PoolService {
	return &PoolService{
		engine:    eng,
		persistor: persistor,
		metrics:   metrics,
	}
}

func (s *PoolService) mirrorPool() {
	if s.persistor != nil {
		s.persistor.SavePoolState(poolState(s.engine))
	}
	stats := s.engine.Stats()
	s.metrics.SetPoolGauges(stats.TotalLiquidity, stats.ReservedFunds, stats.TotalShares, stats.ActivePolicies)
}

// Deposit adds capital to the pool and mints shares for the provider.
func (s *PoolService) Deposit(ctx context.Context, provider string, req models.DepositRequest) (models.LPPosition, error) {
	if err := req.Validate(); err != nil {
		return models.LPPosition{}, err
	}

	position, err := s.engine.Deposit(provider, req.Amount)
	if err != nil {
		return models.LPPosition{}, err
	}

	slog.Info("Liquidity deposited", "provider", provider, "amount", req.Amount, "shares", position.Shares)

	if s.persistor != nil {
		s.persistor.SavePosition(position)
	}
	s.mirrorPool()

	return position, nil
}

// Withdraw burns shares and pays out their current value.
func (s *PoolService) Withdraw(ctx context.Context, provider string, req models.WithdrawRequest) (models.LPPosition, float64, error) {
	if err := req.Validate(); err != nil {
		return models.LPPosition{}, 0, err
	}

	position, amount, err := s.engine.Withdraw(provider, req.Shares)
	if err != nil {
		return models.LPPosition{}, 0, err
	}

	slog.Info("Liquidity withdrawn", "provider", provider, "shares", req.Shares, "amount", amount)

	s.metrics.PayoutAmount.WithLabelValues(models.PayoutWithdrawal).Add(amount)
	if s.persistor != nil {
		s.persistor.SavePosition(position)
		s.persistor.RecordPayout(models.Payout{
			Recipient: provider,
			Amount:    amount,
			Kind:      models.PayoutWithdrawal,
		})
	}
	s.mirrorPool()

	return position, amount, nil
}

// Position returns a provider's position.
func (s *PoolService) Position(provider string) (models.LPPosition, error) {
	return s.engine.Position(provider)
}

// ProviderValue returns the current redeemable value of a provider's
// shares.
func (s *PoolService) ProviderValue(provider string) float64 {
	return s.engine.ProviderValue(provider)
}

// Stats returns the pool-level counters.
func (s *PoolService) Stats() models.PoolStats {
	return s.engine.Stats()
}

// WithdrawProtocolFees pays the accrued protocol fees to the owner.
func (s *PoolService) WithdrawProtocolFees(ctx context.Context, caller string) (float64, error) {
	amount, err := s.engine.WithdrawProtocolFees(caller)
	if err != nil {
		return 0, err
	}

	slog.Info("Protocol fees withdrawn", "owner", caller, "amount", amount)

	s.metrics.PayoutAmount.WithLabelValues(models.PayoutProtocolFees).Add(amount)
	if s.persistor != nil {
		s.persistor.RecordPayout(models.Payout{
			Recipient: caller,
			Amount:    amount,
			Kind:      models.PayoutProtocolFees,
		})
	}
	s.mirrorPool()

	return amount, nil
}
