package services

import (
	"context"
	"testing"
	"time"

	"weathercover/internal/engine"
	"weathercover/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// CLAIM PROCESSING
// ============================================================================

func TestClaimService_Process(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 100)

	policy, err := env.policy.Purchase(context.Background(), testHolder, models.PurchasePolicyRequest{
		MetricType:       models.MetricDrought,
		TriggerThreshold: 100,
		Location:         testLocation,
		Premium:          0.1,
	})
	require.NoError(t, err)

	result, err := env.claim.Process(context.Background(), testOwner, policy.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyClaimed, result.Policy.Status)
	assert.InDelta(t, 0.8, result.Payout, 1e-9)

	stats := env.pool.Stats()
	assert.Equal(t, 0, stats.ActivePolicies)
	assert.InDelta(t, 0.8, stats.TotalPayouts, 1e-9)
}

func TestClaimService_Process_TriggerMiss(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 100)

	policy, err := env.policy.Purchase(context.Background(), testHolder, models.PurchasePolicyRequest{
		MetricType:       models.MetricDrought,
		TriggerThreshold: 100,
		Location:         testLocation,
		Premium:          0.1,
	})
	require.NoError(t, err)

	// Equality never triggers.
	_, err = env.claim.Process(context.Background(), testOwner, policy.ID, 100)
	assert.ErrorIs(t, err, engine.ErrConditionsNotMet)

	stored, err := env.policy.Get(policy.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyActive, stored.Status)
}

func TestClaimService_IsClaimable(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 100)

	policy, err := env.policy.Purchase(context.Background(), testHolder, models.PurchasePolicyRequest{
		MetricType:       models.MetricDrought,
		TriggerThreshold: 100,
		Location:         testLocation,
		Premium:          0.1,
	})
	require.NoError(t, err)
	assert.False(t, env.claim.IsClaimable(policy.ID))

	value := int64(50)
	_, err = env.oracle.SubmitReading(context.Background(), testOwner, models.SubmitReadingRequest{
		Location: testLocation,
		Value:    &value,
	})
	require.NoError(t, err)
	assert.True(t, env.claim.IsClaimable(policy.ID))
}

// ============================================================================
// EVALUATION CYCLE
// ============================================================================

func TestClaimService_RunCycle(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 100)

	triggered, err := env.policy.Purchase(context.Background(), testHolder, models.PurchasePolicyRequest{
		MetricType:       models.MetricDrought,
		TriggerThreshold: 100,
		Location:         testLocation,
		Premium:          0.1,
	})
	require.NoError(t, err)

	untouched, err := env.policy.Purchase(context.Background(), testHolder, models.PurchasePolicyRequest{
		MetricType:       models.MetricHeat,
		TriggerThreshold: 400,
		Location:         "21.028511,105.804817",
		Premium:          0.1,
	})
	require.NoError(t, err)

	value := int64(50)
	_, err = env.oracle.SubmitReading(context.Background(), testOwner, models.SubmitReadingRequest{
		Location: testLocation,
		Value:    &value,
	})
	require.NoError(t, err)

	result, err := env.claim.RunCycle(context.Background(), testOwner)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Evaluated)
	assert.Equal(t, 1, result.Claimed)
	assert.Equal(t, 0, result.Expired)

	claimed, err := env.policy.Get(triggered.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyClaimed, claimed.Status)

	stillActive, err := env.policy.Get(untouched.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyActive, stillActive.Status)

	// Past the validity window the remaining policy gets expired instead.
	env.clock.Advance(30*24*time.Hour + time.Second)

	result, err = env.claim.RunCycle(context.Background(), testOwner)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Evaluated)
	assert.Equal(t, 0, result.Claimed)
	assert.Equal(t, 1, result.Expired)

	expired, err := env.policy.Get(untouched.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyExpired, expired.Status)
}

func TestClaimService_RunCycle_Unauthorized(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 100)

	_, err := env.policy.Purchase(context.Background(), testHolder, models.PurchasePolicyRequest{
		MetricType:       models.MetricDrought,
		TriggerThreshold: 100,
		Location:         testLocation,
		Premium:          0.1,
	})
	require.NoError(t, err)

	value := int64(50)
	_, err = env.oracle.SubmitReading(context.Background(), testOwner, models.SubmitReadingRequest{
		Location: testLocation,
		Value:    &value,
	})
	require.NoError(t, err)

	_, err = env.claim.RunCycle(context.Background(), "stranger")
	assert.ErrorIs(t, err, engine.ErrUnauthorized)
}
