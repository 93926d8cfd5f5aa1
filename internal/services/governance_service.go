package services

import (
	"context"
	"log/slog"
	"time"

	"weathercover/internal/engine"
	"weathercover/internal/event"
	"weathercover/internal/models"
	"weathercover/internal/worker"

	"github.com/google/uuid"
)

// GovernanceService handles shareholder proposals and voting.
type GovernanceService struct {
	engine    *engine.Engine
	persistor *worker.Persistor
	publisher *event.Publisher
}

// NewGovernanceService creates a new governance service.
func NewGovernanceService(eng *engine.Engine, persistor *worker.Persistor, publisher *event.Publisher) *GovernanceService {
	return &GovernanceService{
		engine:    eng,
		persistor: persistor,
		publisher: publisher,
	}
}

func (s *GovernanceService) mirrorProposal(proposal models.Proposal) {
	if s.persistor != nil {
		s.persistor.SaveProposal(proposal, s.engine.Voters(proposal.ID))
	}
}

// Propose creates a pending proposal to change one parameter.
func (s *GovernanceService) Propose(ctx context.Context, caller string, req models.CreateProposalRequest) (models.Proposal, error) {
	if err := req.Validate(); err != nil {
		return models.Proposal{}, err
	}

	proposal, err := s.engine.Propose(caller, req.ParamName, req.NewValue)
	if err != nil {
		return models.Proposal{}, err
	}

	slog.Info("Proposal created",
		"proposal_id", proposal.ID,
		"param_name", proposal.ParamName,
		"new_value", proposal.NewValue,
		"proposer", caller)

	s.mirrorProposal(proposal)
	return proposal, nil
}

// Vote records a share-weighted vote on a pending proposal.
func (s *GovernanceService) Vote(ctx context.Context, caller string, proposalID uint64, support bool) (models.Proposal, error) {
	proposal, err := s.engine.Vote(caller, proposalID, support)
	if err != nil {
		return models.Proposal{}, err
	}

	slog.Info("Vote recorded", "proposal_id", proposalID, "voter", caller, "support", support)

	s.mirrorProposal(proposal)
	return proposal, nil
}

// Execute finalizes a proposal after its deadline. Permissionless.
func (s *GovernanceService) Execute(ctx context.Context, proposalID uint64) (models.Proposal, error) {
	proposal, err := s.engine.ExecuteProposal(proposalID)
	if err != nil {
		return models.Proposal{}, err
	}

	slog.Info("Proposal finalized",
		"proposal_id", proposal.ID,
		"status", proposal.Status,
		"votes_for", proposal.VotesFor,
		"votes_against", proposal.VotesAgainst)

	s.mirrorProposal(proposal)
	if s.persistor != nil {
		// Parameters may have changed; refresh the pool row.
		s.persistor.SavePoolState(poolState(s.engine))
	}

	if s.publisher != nil {
		s.publisher.PublishGovernance(ctx, event.GovernanceEvent{
			ID:         uuid.New().String(),
			ProposalID: proposal.ID,
			ParamName:  proposal.ParamName,
			NewValue:   proposal.NewValue,
			Status:     proposal.Status,
			Timestamp:  time.Now(),
		})
	}

	return proposal, nil
}

// Get returns one proposal.
func (s *GovernanceService) Get(proposalID uint64) (models.Proposal, error) {
	return s.engine.GetProposal(proposalID)
}

// List returns all proposals in creation order.
func (s *GovernanceService) List() []models.Proposal {
	return s.engine.Proposals()
}

// Params returns the live governable parameters.
func (s *GovernanceService) Params() models.Params {
	return s.engine.Params()
}
