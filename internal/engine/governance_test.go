package engine

import (
	"testing"
	"time"

	"weathercover/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropose_RequiresShares(t *testing.T) {
	e, _ := newTestEngine()

	_, err := e.Propose("stranger", models.ParamMinPremium, 0.5)
	assert.ErrorIs(t, err, ErrNoShares)

	_, err = e.Deposit(testProvider, 10)
	require.NoError(t, err)

	proposal, err := e.Propose(testProvider, models.ParamMinPremium, 0.5)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), proposal.ID)
	assert.Equal(t, models.ProposalPending, proposal.Status)
	assert.Equal(t, proposal.CreatedAt.Add(72*time.Hour), proposal.Deadline)
}

func TestPropose_ValidatesKnownParams(t *testing.T) {
	e, _ := newFundedEngine(10)

	_, err := e.Propose(testProvider, models.ParamPolicyDuration, float64(3600))
	assert.ErrorIs(t, err, ErrInvalidInput, "policy duration under one day")

	_, err = e.Propose(testProvider, models.ParamProtocolFeePercent, 80)
	assert.ErrorIs(t, err, ErrInvalidInput, "fee above 50 percent")

	// Unknown parameter names are tolerated; execution is a no-op.
	_, err = e.Propose(testProvider, "jackpot_multiplier", 9000)
	assert.NoError(t, err)
}

func TestVote_WeightedByShares(t *testing.T) {
	e, _ := newTestEngine()
	_, err := e.Deposit("lp-big", 30)
	require.NoError(t, err)
	_, err = e.Deposit("lp-small", 10)
	require.NoError(t, err)

	proposal, err := e.Propose("lp-big", models.ParamMinPremium, 0.5)
	require.NoError(t, err)

	proposal, err = e.Vote("lp-big", proposal.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 30.0, proposal.VotesFor)

	proposal, err = e.Vote("lp-small", proposal.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 10.0, proposal.VotesAgainst)
}

func TestVote_OncePerAddress(t *testing.T) {
	e, _ := newFundedEngine(10)

	proposal, err := e.Propose(testProvider, models.ParamMinPremium, 0.5)
	require.NoError(t, err)

	_, err = e.Vote(testProvider, proposal.ID, true)
	require.NoError(t, err)

	_, err = e.Vote(testProvider, proposal.ID, true)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
}

func TestVote_ClosedAfterDeadline(t *testing.T) {
	e, clock := newFundedEngine(10)

	proposal, err := e.Propose(testProvider, models.ParamMinPremium, 0.5)
	require.NoError(t, err)

	clock.Advance(73 * time.Hour)

	_, err = e.Vote(testProvider, proposal.ID, true)
	assert.ErrorIs(t, err, ErrWindowClosed)
}

func TestExecuteProposal_AppliesParameterOnQuorumAndMajority(t *testing.T) {
	e, clock := newFundedEngine(10)

	proposal, err := e.Propose(testProvider, models.ParamMinPremium, 0.5)
	require.NoError(t, err)
	_, err = e.Vote(testProvider, proposal.ID, true)
	require.NoError(t, err)

	_, err = e.ExecuteProposal(proposal.ID)
	assert.ErrorIs(t, err, ErrWindowOpen, "cannot execute before deadline")

	clock.Advance(73 * time.Hour)

	executed, err := e.ExecuteProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalExecuted, executed.Status)
	assert.Equal(t, 0.5, e.Params().MinPremium)
}

func TestExecuteProposal_RejectedWithoutQuorum(t *testing.T) {
	e, clock := newTestEngine()
	_, err := e.Deposit("lp-big", 90)
	require.NoError(t, err)
	_, err = e.Deposit("lp-small", 10)
	require.NoError(t, err)

	proposal, err := e.Propose("lp-small", models.ParamMinPremium, 0.5)
	require.NoError(t, err)
	// Only 10 of 100 shares vote; quorum is 25.
	_, err = e.Vote("lp-small", proposal.ID, true)
	require.NoError(t, err)

	clock.Advance(73 * time.Hour)

	rejected, err := e.ExecuteProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalRejected, rejected.Status)
	assert.Equal(t, 0.01, e.Params().MinPremium, "rejected proposal leaves parameters untouched")

	_, err = e.ExecuteProposal(proposal.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus, "finalized proposals are immutable")
}

func TestExecuteProposal_RejectedOnMajorityAgainst(t *testing.T) {
	e, clock := newTestEngine()
	_, err := e.Deposit("lp-big", 60)
	require.NoError(t, err)
	_, err = e.Deposit("lp-small", 40)
	require.NoError(t, err)

	proposal, err := e.Propose("lp-small", models.ParamProtocolFeePercent, 20)
	require.NoError(t, err)
	_, err = e.Vote("lp-small", proposal.ID, true)
	require.NoError(t, err)
	_, err = e.Vote("lp-big", proposal.ID, false)
	require.NoError(t, err)

	clock.Advance(73 * time.Hour)

	rejected, err := e.ExecuteProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalRejected, rejected.Status)
	assert.Equal(t, 10.0, e.Params().ProtocolFeePercent)
}

func TestExecuteProposal_UnknownParamIsExecutedNoOp(t *testing.T) {
	e, clock := newFundedEngine(10)

	proposal, err := e.Propose(testProvider, "jackpot_multiplier", 9000)
	require.NoError(t, err)
	_, err = e.Vote(testProvider, proposal.ID, true)
	require.NoError(t, err)

	clock.Advance(73 * time.Hour)

	executed, err := e.ExecuteProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalExecuted, executed.Status)

	params := e.Params()
	assert.Equal(t, 0.01, params.MinPremium)
	assert.Equal(t, 10.0, params.ProtocolFeePercent)
	assert.Equal(t, 30*24*time.Hour, params.PolicyDuration)
}

func TestExecuteProposal_DurationChangeAffectsOnlyNewPolicies(t *testing.T) {
	e, clock := newFundedEngine(100)

	before, err := e.PurchasePolicy(testHolder, models.MetricDrought, 100, testLocation, 0.1)
	require.NoError(t, err)

	proposal, err := e.Propose(testProvider, models.ParamPolicyDuration, float64(60*24*60*60))
	require.NoError(t, err)
	_, err = e.Vote(testProvider, proposal.ID, true)
	require.NoError(t, err)
	clock.Advance(73 * time.Hour)
	_, err = e.ExecuteProposal(proposal.ID)
	require.NoError(t, err)

	after, err := e.PurchasePolicy(testHolder, models.MetricDrought, 100, "loc-b", 0.1)
	require.NoError(t, err)

	got, err := e.GetPolicy(before.ID)
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, got.EndTime.Sub(got.StartTime), "issued policies keep their window")
	assert.Equal(t, 60*24*time.Hour, after.EndTime.Sub(after.StartTime))
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	e, clock := newFundedEngine(10)

	policy, err := e.PurchasePolicy(testHolder, models.MetricDrought, 100, testLocation, 0.1)
	require.NoError(t, err)
	_, err = e.SubmitReading(testOwner, testLocation, 50)
	require.NoError(t, err)
	proposal, err := e.Propose(testProvider, models.ParamMinPremium, 0.5)
	require.NoError(t, err)
	_, err = e.Vote(testProvider, proposal.ID, true)
	require.NoError(t, err)

	restored := New(Config{Owner: testOwner, Params: e.Params(), Clock: clock})
	restored.Restore(e.Snapshot())

	assert.Equal(t, e.Stats(), restored.Stats())

	gotPolicy, err := restored.GetPolicy(policy.ID)
	require.NoError(t, err)
	assert.Equal(t, policy.CoverageAmount, gotPolicy.CoverageAmount)
	assert.True(t, restored.IsClaimable(policy.ID))

	// Recorded votes survive the restore.
	_, err = restored.Vote(testProvider, proposal.ID, true)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	// New ids continue after the restored ones.
	next, err := restored.PurchasePolicy(testHolder, models.MetricHeat, 450, "loc-b", 0.1)
	require.NoError(t, err)
	assert.Equal(t, policy.ID+1, next.ID)
}
