package services

import (
	"context"
	"log/slog"
	"time"

	"weathercover/internal/engine"
	"weathercover/internal/event"
	"weathercover/internal/models"
	"weathercover/internal/observability"
	"weathercover/internal/worker"

	"github.com/google/uuid"
)

// PolicyService handles the policy lifecycle: purchase, expiry,
// cancellation, and receipt transfer. Every mutation goes through the
// engine first; the mirror, events, and metrics follow after the
// in-memory state has committed.
type PolicyService struct {
	engine    *engine.Engine
	persistor *worker.Persistor
	publisher *event.Publisher
	metrics   *observability.Metrics
}

// NewPolicyService creates a new policy service. Persistor and publisher
// may be nil, which disables the mirror and events respectively.
func NewPolicyService(eng *engine.Engine, persistor *worker.Persistor, publisher *event.Publisher, metrics *observability.Metrics) *PolicyService {
	return &PolicyService{
		engine:    eng,
		persistor: persistor,
		publisher: publisher,
		metrics:   metrics,
	}
}

func (s *PolicyService) mirrorPool() {
	if s.persistor != nil {
		s.persistor.SavePoolState(poolState(s.engine))
	}
	stats := s.engine.Stats()
	s.metrics.SetPoolGauges(stats.TotalLiquidity, stats.ReservedFunds, stats.TotalShares, stats.ActivePolicies)
}

func (s *PolicyService) publishPolicy(ctx context.Context, eventType event.PolicyEventType, policy models.Policy, amount float64) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishPolicy(ctx, event.PolicyEvent{
		ID:        uuid.New().String(),
		EventType: eventType,
		PolicyID:  policy.ID,
		Holder:    policy.Holder,
		Metric:    policy.MetricType,
		Location:  policy.Location,
		Amount:    amount,
		Timestamp: time.Now(),
	})
}

// Purchase validates and creates a new policy for holder.
func (s *PolicyService) Purchase(ctx context.Context, holder string, req models.PurchasePolicyRequest) (models.Policy, error) {
	if err := req.Validate(); err != nil {
		return models.Policy{}, err
	}

	policy, err := s.engine.PurchasePolicy(holder, req.MetricType, req.TriggerThreshold, req.Location, req.Premium)
	if err != nil {
		return models.Policy{}, err
	}

	slog.Info("Policy purchased",
		"policy_id", policy.ID,
		"holder", holder,
		"metric_type", policy.MetricType,
		"risk_tier", policy.RiskTier,
		"premium", policy.Premium,
		"coverage", policy.CoverageAmount)

	s.metrics.PoliciesPurchased.Inc()
	if s.persistor != nil {
		s.persistor.SavePolicy(policy)
	}
	s.mirrorPool()
	s.publishPolicy(ctx, event.PolicyPurchased, policy, 0)

	return policy, nil
}

// Expire settles an active policy past its end time. Permissionless.
func (s *PolicyService) Expire(ctx context.Context, policyID uint64) (models.Policy, error) {
	policy, err := s.engine.ExpirePolicy(policyID)
	if err != nil {
		return models.Policy{}, err
	}

	slog.Info("Policy expired", "policy_id", policy.ID, "holder", policy.Holder)

	s.metrics.PoliciesExpired.Inc()
	if s.persistor != nil {
		s.persistor.SavePolicy(policy)
	}
	s.mirrorPool()
	s.publishPolicy(ctx, event.PolicyExpired, policy, 0)

	return policy, nil
}

// Cancel cancels the caller's active policy inside the cancellation
// window and refunds half the premium.
func (s *PolicyService) Cancel(ctx context.Context, caller string, policyID uint64) (models.Policy, float64, error) {
	policy, refund, err := s.engine.CancelPolicy(caller, policyID)
	if err != nil {
		return models.Policy{}, 0, err
	}

	slog.Info("Policy cancelled", "policy_id", policy.ID, "holder", policy.Holder, "refund", refund)

	s.metrics.PoliciesCancelled.Inc()
	s.metrics.PayoutAmount.WithLabelValues(models.PayoutRefund).Add(refund)
	if s.persistor != nil {
		s.persistor.SavePolicy(policy)
		policyID := policy.ID
		s.persistor.RecordPayout(models.Payout{
			PolicyID:  &policyID,
			Recipient: policy.Holder,
			Amount:    refund,
			Kind:      models.PayoutRefund,
		})
	}
	s.mirrorPool()
	s.publishPolicy(ctx, event.PolicyCancelled, policy, refund)

	return policy, refund, nil
}

// Transfer moves the policy receipt to another identity.
func (s *PolicyService) Transfer(ctx context.Context, caller string, policyID uint64, req models.TransferReceiptRequest) (models.Policy, error) {
	if err := req.Validate(); err != nil {
		return models.Policy{}, err
	}

	policy, err := s.engine.TransferReceipt(caller, policyID, req.To)
	if err != nil {
		return models.Policy{}, err
	}

	slog.Info("Receipt transferred", "policy_id", policy.ID, "from", caller, "to", req.To)

	if s.persistor != nil {
		s.persistor.SavePolicy(policy)
	}

	return policy, nil
}

// Get returns one policy.
func (s *PolicyService) Get(policyID uint64) (models.Policy, error) {
	return s.engine.GetPolicy(policyID)
}

// ByHolder returns all policies ever purchased by one holder.
func (s *PolicyService) ByHolder(holder string) []models.Policy {
	return s.engine.PoliciesByHolder(holder)
}
