package engine

import "weathercover/internal/models"

// ClaimResult is the outcome of a successful claim: the updated policy
// and the amount paid to the holder.
type ClaimResult struct {
	Policy models.Policy
	Payout float64
}

// IsClaimable reports whether a policy would pay out against the latest
// stored reading for its location: active, inside its validity window,
// with a valid reading that breaches the threshold.
func (e *Engine) IsClaimable(policyID uint64) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	policy, ok := e.policies[policyID]
	if !ok || policy.Status != models.PolicyActive {
		return false
	}
	if e.clock.Now().After(policy.EndTime) {
		return false
	}
	reading, ok := e.readings[policy.Location]
	if !ok || !reading.Valid {
		return false
	}
	return IsTriggered(policy.MetricType, reading.Value, policy.TriggerThreshold)
}

// ProcessClaim settles a triggered policy. The observed value is asserted
// by the authorized caller rather than re-read from storage; that is the
// trust boundary between claim processing and reading freshness. All
// state moves together: status, payout counters, reservation release, and
// the pool debit, with the transfer to the holder recorded as the last
// effect. A trigger miss is an expected outcome (ErrConditionsNotMet),
// not a hard failure.
func (e *Engine) ProcessClaim(caller string, policyID uint64, observedValue int64) (ClaimResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isAuthority(caller) {
		return ClaimResult{}, ErrUnauthorized
	}
	policy, ok := e.policies[policyID]
	if !ok {
		return ClaimResult{}, ErrNotFound
	}
	if policy.Status != models.PolicyActive {
		return ClaimResult{}, ErrInvalidStatus
	}
	if e.clock.Now().After(policy.EndTime) {
		return ClaimResult{}, ErrWindowClosed
	}
	if e.poolBalance() < policy.CoverageAmount {
		return ClaimResult{}, ErrInsufficientLiquidity
	}
	if !IsTriggered(policy.MetricType, observedValue, policy.TriggerThreshold) {
		return ClaimResult{}, ErrConditionsNotMet
	}

	policy.Status = models.PolicyClaimed
	policy.UpdatedAt = e.clock.Now()
	e.totalPayouts += policy.CoverageAmount
	e.reservedFunds -= policy.CoverageAmount
	e.activePolicies--
	e.debitPool(policy.CoverageAmount)

	return ClaimResult{Policy: *policy, Payout: policy.CoverageAmount}, nil
}
