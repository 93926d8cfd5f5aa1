package engine

import (
	"testing"

	"weathercover/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeposit_FirstDepositorBootstrapsShareUnit(t *testing.T) {
	e, _ := newTestEngine()

	pos, err := e.Deposit(testProvider, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, pos.Shares)
	assert.Equal(t, 2.0, pos.Deposited)

	stats := e.Stats()
	assert.Equal(t, 2.0, stats.TotalLiquidity)
	assert.Equal(t, 2.0, stats.TotalShares)
	assert.Equal(t, 1.0, stats.SharePrice)
}

func TestDeposit_SubsequentDepositorsPricedByPool(t *testing.T) {
	e, _ := newTestEngine()

	_, err := e.Deposit(testProvider, 10)
	require.NoError(t, err)

	// Premium yield raises the share price above 1:1 before the second
	// LP enters.
	_, err = e.PurchasePolicy(testHolder, models.MetricDrought, 100, testLocation, 1.0)
	require.NoError(t, err)

	pos, err := e.Deposit("lp-2", 10)
	require.NoError(t, err)
	assert.Less(t, pos.Shares, 10.0, "entering above 1:1 mints fewer shares than units deposited")

	// Both positions value out to roughly their contribution.
	assert.InDelta(t, 10.0, e.ProviderValue("lp-2"), 1e-6)
	assert.Greater(t, e.ProviderValue(testProvider), 10.0)
}

func TestWithdraw_RoundTripReturnsDeposit(t *testing.T) {
	e, _ := newTestEngine()

	pos, err := e.Deposit(testProvider, 2.0)
	require.NoError(t, err)

	_, amount, err := e.Withdraw(testProvider, pos.Shares)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, amount, 1e-9)

	stats := e.Stats()
	assert.Zero(t, stats.TotalShares)
	assert.InDelta(t, 0, stats.TotalLiquidity, 1e-9)
}

func TestWithdraw_BlockedByReservedFunds(t *testing.T) {
	e, _ := newFundedEngine(10)

	// Coverage 8.0 reserved out of ~10.9 liquidity.
	_, err := e.PurchasePolicy(testHolder, models.MetricDrought, 100, testLocation, 1.0)
	require.NoError(t, err)

	pos, err := e.Position(testProvider)
	require.NoError(t, err)

	_, _, err = e.Withdraw(testProvider, pos.Shares)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity, "funds reserved for active policies")

	// A partial withdrawal inside the unreserved slice still works.
	_, amount, err := e.Withdraw(testProvider, 1.0)
	require.NoError(t, err)
	assert.Greater(t, amount, 0.0)
}

func TestWithdraw_MoreSharesThanHeld(t *testing.T) {
	e, _ := newFundedEngine(2)

	_, _, err := e.Withdraw(testProvider, 3)
	assert.ErrorIs(t, err, ErrInsufficientShares)

	_, _, err = e.Withdraw("stranger", 1)
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestSharePrice_FallsWhenPayoutExceedsPremium(t *testing.T) {
	e, _ := newFundedEngine(10)

	_, err := e.PurchasePolicy(testHolder, models.MetricDrought, 100, testLocation, 0.1)
	require.NoError(t, err)
	priceBefore := e.Stats().SharePrice

	_, err = e.SubmitReading(testOwner, testLocation, 50)
	require.NoError(t, err)
	_, err = e.ProcessClaim(testOwner, 1, 50)
	require.NoError(t, err)

	priceAfter := e.Stats().SharePrice
	assert.Less(t, priceAfter, priceBefore, "a payout above collected premium socializes the loss")
	assert.Less(t, priceAfter, 1.0)
}

func TestDeposit_CreditsPreShareholderPremium(t *testing.T) {
	e, _ := newTestEngine()

	// Seed unattributed funds directly through a restored snapshot: the
	// pool collected premium before any LP existed.
	e.Restore(Snapshot{
		Pool: models.PoolStats{UnattributedPremium: 0.9},
	})

	stats := e.Stats()
	assert.Equal(t, 0.9, stats.UnattributedPremium)
	assert.Zero(t, stats.TotalLiquidity)

	_, err := e.Deposit(testProvider, 1.0)
	require.NoError(t, err)

	stats = e.Stats()
	assert.Zero(t, stats.UnattributedPremium, "held-back premium credited on first deposit")
	assert.InDelta(t, 1.9, stats.TotalLiquidity, 1e-9)
}

func TestWithdrawProtocolFees_OwnerOnly(t *testing.T) {
	e, _ := newFundedEngine(10)

	_, err := e.PurchasePolicy(testHolder, models.MetricDrought, 100, testLocation, 1.0)
	require.NoError(t, err)

	_, err = e.WithdrawProtocolFees(testProvider)
	assert.ErrorIs(t, err, ErrUnauthorized)

	amount, err := e.WithdrawProtocolFees(testOwner)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, amount, 1e-9)
	assert.Zero(t, e.Stats().ProtocolFees)
}
