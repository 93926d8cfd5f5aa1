package engine

import (
	"sort"
	"time"

	"weathercover/internal/models"
)

// Governance: shareholders propose and vote on parameter changes, weighted
// by their share balance at vote time. A proposal is finalized by anyone
// calling ExecuteProposal after the deadline.

// Propose creates a pending proposal with a fixed voting period. Values
// for known parameters are validated up front so an approved proposal can
// always be applied; unknown parameter names are tolerated and become a
// no-op at execution.
func (e *Engine) Propose(caller, paramName string, newValue float64) (models.Proposal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, ok := e.positions[caller]
	if !ok || pos.Shares <= 0 {
		return models.Proposal{}, ErrNoShares
	}

	switch paramName {
	case models.ParamMinPremium:
		if newValue < 0 {
			return models.Proposal{}, ErrInvalidInput
		}
	case models.ParamPolicyDuration:
		if time.Duration(newValue)*time.Second < minPolicyDuration {
			return models.Proposal{}, ErrInvalidInput
		}
	case models.ParamProtocolFeePercent:
		if newValue < 0 || newValue > maxFeePercent {
			return models.Proposal{}, ErrInvalidInput
		}
	}

	now := e.clock.Now()
	proposal := &models.Proposal{
		ID:        e.nextProposalID,
		ParamName: paramName,
		NewValue:  newValue,
		Proposer:  caller,
		Deadline:  now.Add(votingPeriod),
		Status:    models.ProposalPending,
		CreatedAt: now,
	}
	e.nextProposalID++
	e.proposals[proposal.ID] = proposal
	e.voted[proposal.ID] = make(map[string]bool)

	return *proposal, nil
}

// Vote records a for/against vote weighted by the caller's current share
// balance. One vote per address per proposal; the weight is read live,
// not snapshotted at proposal creation.
func (e *Engine) Vote(caller string, proposalID uint64, support bool) (models.Proposal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	proposal, ok := e.proposals[proposalID]
	if !ok {
		return models.Proposal{}, ErrNotFound
	}
	if proposal.Status != models.ProposalPending {
		return models.Proposal{}, ErrInvalidStatus
	}
	if !e.clock.Now().Before(proposal.Deadline) {
		return models.Proposal{}, ErrWindowClosed
	}
	pos, ok := e.positions[caller]
	if !ok || pos.Shares <= 0 {
		return models.Proposal{}, ErrNoShares
	}
	if e.voted[proposalID][caller] {
		return models.Proposal{}, ErrAlreadyVoted
	}

	e.voted[proposalID][caller] = true
	if support {
		proposal.VotesFor += pos.Shares
	} else {
		proposal.VotesAgainst += pos.Shares
	}
	return *proposal, nil
}

// ExecuteProposal finalizes a pending proposal once its deadline has
// passed. Permissionless. Quorum is a fixed fraction of all outstanding
// shares; on quorum plus strict majority the parameter change is applied
// and the proposal becomes executed, otherwise rejected. Either way the
// proposal is immutable afterwards.
func (e *Engine) ExecuteProposal(proposalID uint64) (models.Proposal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	proposal, ok := e.proposals[proposalID]
	if !ok {
		return models.Proposal{}, ErrNotFound
	}
	if proposal.Status != models.ProposalPending {
		return models.Proposal{}, ErrInvalidStatus
	}
	if e.clock.Now().Before(proposal.Deadline) {
		return models.Proposal{}, ErrWindowOpen
	}

	quorum := e.totalShares * quorumPercent / 100
	if proposal.VotesFor+proposal.VotesAgainst >= quorum && proposal.VotesFor > proposal.VotesAgainst {
		e.applyParam(proposal.ParamName, proposal.NewValue)
		proposal.Status = models.ProposalExecuted
	} else {
		proposal.Status = models.ProposalRejected
	}
	return *proposal, nil
}

// applyParam applies a parameter change. Unknown names are a silent
// no-op. Callers hold the lock.
func (e *Engine) applyParam(paramName string, newValue float64) {
	switch paramName {
	case models.ParamMinPremium:
		e.params.MinPremium = newValue
	case models.ParamPolicyDuration:
		e.params.PolicyDuration = time.Duration(newValue) * time.Second
	case models.ParamProtocolFeePercent:
		e.params.ProtocolFeePercent = newValue
	}
}

// Voters returns the identities that have voted on a proposal, sorted.
func (e *Engine) Voters(proposalID uint64) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	voters := make([]string, 0, len(e.voted[proposalID]))
	for voter := range e.voted[proposalID] {
		voters = append(voters, voter)
	}
	sort.Strings(voters)
	return voters
}

// GetProposal returns a copy of one proposal.
func (e *Engine) GetProposal(proposalID uint64) (models.Proposal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	proposal, ok := e.proposals[proposalID]
	if !ok {
		return models.Proposal{}, ErrNotFound
	}
	return *proposal, nil
}

// Proposals returns copies of all proposals in creation order.
func (e *Engine) Proposals() []models.Proposal {
	e.mu.RLock()
	defer e.mu.RUnlock()

	proposals := make([]models.Proposal, 0, len(e.proposals))
	for _, proposal := range e.proposals {
		proposals = append(proposals, *proposal)
	}
	sort.Slice(proposals, func(i, j int) bool { return proposals[i].ID < proposals[j].ID })
	return proposals
}
