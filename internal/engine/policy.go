package engine

import (
	"sort"
	"strings"

	"weathercover/internal/models"
)

// Policy lifecycle: purchase mints an active policy and its receipt;
// the only transitions out of active are claim, expiry, and holder
// cancellation, each terminal.

// PurchasePolicy creates a new policy for holder. The premium is split
// into protocol fee and pool credit, coverage is reserved against the
// pool, and the receipt is bound to the holder. Returns a copy of the
// stored policy.
func (e *Engine) PurchasePolicy(holder string, metric models.MetricType, threshold int64, location string, premium float64) (models.Policy, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if holder == "" || strings.TrimSpace(location) == "" {
		return models.Policy{}, ErrInvalidInput
	}
	if premium < e.params.MinPremium {
		return models.Policy{}, ErrInvalidInput
	}

	tier := ClassifyRisk(metric, threshold)
	coverage := premium * TierMultiplier(tier)

	// Insolvency guard: never accept a policy the pool could not pay if
	// it triggered immediately. False rejections are acceptable here,
	// false acceptances are not.
	if coverage > e.availableCapacity() {
		return models.Policy{}, ErrInsufficientLiquidity
	}

	now := e.clock.Now()
	fee := premium * e.params.ProtocolFeePercent / 100
	net := premium - fee

	e.protocolFees += fee
	if e.totalShares > 0 {
		e.totalLiquidity += net
	} else {
		e.unattributedPremium += net
	}
	e.totalPremiumsCollected += premium
	e.reservedFunds += coverage
	e.activePolicies++

	policy := &models.Policy{
		ID:               e.nextPolicyID,
		Holder:           holder,
		Premium:          premium,
		CoverageAmount:   coverage,
		StartTime:        now,
		EndTime:          now.Add(e.params.PolicyDuration),
		MetricType:       metric,
		TriggerThreshold: threshold,
		Location:         location,
		Status:           models.PolicyActive,
		RiskTier:         tier,
		ReceiptOwner:     holder,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	e.nextPolicyID++
	e.policies[policy.ID] = policy
	e.holderIndex[holder] = append(e.holderIndex[holder], policy.ID)

	return *policy, nil
}

// ExpirePolicy marks an active policy past its end time as expired and
// releases its reservation. Permissionless; no refund.
func (e *Engine) ExpirePolicy(policyID uint64) (models.Policy, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	policy, ok := e.policies[policyID]
	if !ok {
		return models.Policy{}, ErrNotFound
	}
	if policy.Status != models.PolicyActive {
		return models.Policy{}, ErrInvalidStatus
	}
	if !e.clock.Now().After(policy.EndTime) {
		return models.Policy{}, ErrWindowOpen
	}

	policy.Status = models.PolicyExpired
	policy.UpdatedAt = e.clock.Now()
	e.reservedFunds -= policy.CoverageAmount
	e.activePolicies--

	return *policy, nil
}

// CancelPolicy lets the holder cancel before half the policy duration has
// elapsed, releasing the reservation and refunding half the premium.
// Returns the updated policy and the refund amount.
func (e *Engine) CancelPolicy(caller string, policyID uint64) (models.Policy, float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	policy, ok := e.policies[policyID]
	if !ok {
		return models.Policy{}, 0, ErrNotFound
	}
	if caller != policy.Holder {
		return models.Policy{}, 0, ErrUnauthorized
	}
	if policy.Status != models.PolicyActive {
		return models.Policy{}, 0, ErrInvalidStatus
	}

	now := e.clock.Now()
	halfway := policy.StartTime.Add(policy.EndTime.Sub(policy.StartTime) / 2)
	if !now.Before(halfway) {
		return models.Policy{}, 0, ErrWindowClosed
	}

	refund := policy.Premium * cancelRefundPercent / 100
	policy.Status = models.PolicyCancelled
	policy.UpdatedAt = now
	e.reservedFunds -= policy.CoverageAmount
	e.activePolicies--
	e.debitPool(refund)

	return *policy, refund, nil
}

// TransferReceipt moves the policy receipt to another identity. The
// receipt is soulbound while the policy is active: transfer is allowed
// only once the policy has reached a terminal status.
func (e *Engine) TransferReceipt(caller string, policyID uint64, to string) (models.Policy, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	policy, ok := e.policies[policyID]
	if !ok {
		return models.Policy{}, ErrNotFound
	}
	if caller != policy.ReceiptOwner {
		return models.Policy{}, ErrUnauthorized
	}
	if to == "" {
		return models.Policy{}, ErrInvalidInput
	}
	if policy.Status == models.PolicyActive {
		return models.Policy{}, ErrInvalidStatus
	}

	policy.ReceiptOwner = to
	policy.UpdatedAt = e.clock.Now()
	return *policy, nil
}

// GetPolicy returns a copy of one policy.
func (e *Engine) GetPolicy(policyID uint64) (models.Policy, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	policy, ok := e.policies[policyID]
	if !ok {
		return models.Policy{}, ErrNotFound
	}
	return *policy, nil
}

// PoliciesByHolder returns copies of all policies ever purchased by one
// holder, in purchase order.
func (e *Engine) PoliciesByHolder(holder string) []models.Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := e.holderIndex[holder]
	policies := make([]models.Policy, 0, len(ids))
	for _, id := range ids {
		policies = append(policies, *e.policies[id])
	}
	return policies
}

// ActivePolicyIDs returns the ids of all currently active policies, for
// the scheduler's evaluation pass.
func (e *Engine) ActivePolicyIDs() []uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var ids []uint64
	for id, policy := range e.policies {
		if policy.Status == models.PolicyActive {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
