package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"weathercover/internal/engine"
	"weathercover/internal/event"
	"weathercover/internal/models"
	"weathercover/internal/observability"
	"weathercover/internal/worker"

	"github.com/google/uuid"
)

// ClaimService settles claims against the latest readings. It is also
// the home of the evaluation cycle that sweeps all active policies.
type ClaimService struct {
	engine        *engine.Engine
	policyService *PolicyService
	persistor     *worker.Persistor
	publisher     *event.Publisher
	metrics       *observability.Metrics
}

// NewClaimService creates a new claim service.
func NewClaimService(eng *engine.Engine, policyService *PolicyService, persistor *worker.Persistor, publisher *event.Publisher, metrics *observability.Metrics) *ClaimService {
	return &ClaimService{
		engine:        eng,
		policyService: policyService,
		persistor:     persistor,
		publisher:     publisher,
		metrics:       metrics,
	}
}

// Process settles one claim with the observed value asserted by the
// authorized caller. A trigger miss comes back as ErrConditionsNotMet.
func (s *ClaimService) Process(ctx context.Context, caller string, policyID uint64, observedValue int64) (engine.ClaimResult, error) {
	result, err := s.engine.ProcessClaim(caller, policyID, observedValue)
	if errors.Is(err, engine.ErrConditionsNotMet) {
		s.metrics.ClaimsRejected.Inc()
		return engine.ClaimResult{}, err
	}
	if err != nil {
		return engine.ClaimResult{}, err
	}

	slog.Info("Claim paid",
		"policy_id", result.Policy.ID,
		"holder", result.Policy.Holder,
		"observed_value", observedValue,
		"payout", result.Payout)

	s.metrics.ClaimsPaid.Inc()
	s.metrics.PayoutAmount.WithLabelValues(models.PayoutClaim).Add(result.Payout)
	if s.persistor != nil {
		s.persistor.SavePolicy(result.Policy)
		s.persistor.SavePoolState(poolState(s.engine))
		claimedID := result.Policy.ID
		s.persistor.RecordPayout(models.Payout{
			PolicyID:  &claimedID,
			Recipient: result.Policy.Holder,
			Amount:    result.Payout,
			Kind:      models.PayoutClaim,
		})
	}
	stats := s.engine.Stats()
	s.metrics.SetPoolGauges(stats.TotalLiquidity, stats.ReservedFunds, stats.TotalShares, stats.ActivePolicies)

	if s.publisher != nil {
		s.publisher.PublishPolicy(ctx, event.PolicyEvent{
			ID:        uuid.New().String(),
			EventType: event.PolicyClaimed,
			PolicyID:  result.Policy.ID,
			Holder:    result.Policy.Holder,
			Metric:    result.Policy.MetricType,
			Location:  result.Policy.Location,
			Amount:    result.Payout,
			Timestamp: time.Now(),
		})
	}

	return result, nil
}

// IsClaimable reports whether a policy would pay out against the latest
// stored reading for its location.
func (s *ClaimService) IsClaimable(policyID uint64) bool {
	return s.engine.IsClaimable(policyID)
}

// CycleResult summarizes one evaluation pass.
type CycleResult struct {
	Evaluated int `json:"evaluated"`
	Claimed   int `json:"claimed"`
	Expired   int `json:"expired"`
}

// RunCycle sweeps every active policy once: policies whose location has a
// triggering reading are claimed, and past-due policies are expired.
// Misses and races with concurrent settlement are skipped, not errors.
func (s *ClaimService) RunCycle(ctx context.Context, caller string) (CycleResult, error) {
	var result CycleResult

	for _, policyID := range s.engine.ActivePolicyIDs() {
		policy, err := s.engine.GetPolicy(policyID)
		if err != nil {
			continue
		}
		result.Evaluated++

		reading, err := s.engine.GetReading(policy.Location)
		if err == nil && reading.Valid {
			_, err := s.Process(ctx, caller, policyID, reading.Value)
			switch {
			case err == nil:
				result.Claimed++
				continue
			case errors.Is(err, engine.ErrUnauthorized):
				return result, err
			}
		}

		if _, err := s.policyService.Expire(ctx, policyID); err == nil {
			result.Expired++
		}
	}

	slog.Info("Evaluation cycle completed",
		"evaluated", result.Evaluated,
		"claimed", result.Claimed,
		"expired", result.Expired)

	return result, nil
}
