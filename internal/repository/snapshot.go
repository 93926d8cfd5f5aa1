package repository

import (
	"fmt"
	"time"

	"weathercover/internal/engine"
)

// LoadSnapshot reads the persisted mirror back into an engine snapshot
// for restore at startup. A fresh database yields an empty snapshot.
func LoadSnapshot(policies *PolicyRepository, readings *ReadingRepository, positions *PositionRepository, proposals *ProposalRepository, pool *PoolRepository) (engine.Snapshot, error) {
	var snap engine.Snapshot

	allPolicies, err := policies.GetAll()
	if err != nil {
		return snap, fmt.Errorf("failed to load policies: %w", err)
	}
	snap.Policies = allPolicies

	allReadings, err := readings.GetAll()
	if err != nil {
		return snap, fmt.Errorf("failed to load readings: %w", err)
	}
	snap.Readings = allReadings

	allPositions, err := positions.GetAll()
	if err != nil {
		return snap, fmt.Errorf("failed to load positions: %w", err)
	}
	snap.Positions = allPositions

	allProposals, voters, err := proposals.GetAll()
	if err != nil {
		return snap, fmt.Errorf("failed to load proposals: %w", err)
	}
	snap.Proposals = allProposals
	snap.Voters = voters

	state, err := pool.Get()
	if err != nil {
		return snap, fmt.Errorf("failed to load pool state: %w", err)
	}
	if state != nil {
		snap.Pool = StatsFromState(state)
		snap.Params.MinPremium = state.MinPremium
		snap.Params.PolicyDuration = time.Duration(state.PolicyDurationSeconds) * time.Second
		snap.Params.ProtocolFeePercent = state.ProtocolFeePercent
		snap.Authority = state.DataAuthority
	}

	return snap, nil
}
