package repository

import (
	"fmt"

	"weathercover/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type ProposalRepository struct {
	db *sqlx.DB
}

func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// proposalRow mirrors the proposals table; voters are stored inline as a
// text array since the set is small and only read as a whole.
type proposalRow struct {
	models.Proposal
	Voters pq.StringArray `db:"voters"`
}

// Upsert writes the proposal together with the set of identities that
// have already voted on it.
func (r *ProposalRepository) Upsert(proposal *models.Proposal, voters []string) error {
	row := proposalRow{
		Proposal: *proposal,
		Voters:   pq.StringArray(voters),
	}
	if row.Voters == nil {
		row.Voters = pq.StringArray{}
	}

	query := `
		INSERT INTO proposals (
			id, param_name, new_value, proposer, votes_for, votes_against,
			deadline, status, voters, created_at
		) VALUES (
			:id, :param_name, :new_value, :proposer, :votes_for, :votes_against,
			:deadline, :status, :voters, :created_at
		)
		ON CONFLICT (id) DO UPDATE SET
			votes_for = EXCLUDED.votes_for,
			votes_against = EXCLUDED.votes_against,
			status = EXCLUDED.status,
			voters = EXCLUDED.voters`

	_, err := r.db.NamedExec(query, row)
	if err != nil {
		return fmt.Errorf("failed to upsert proposal: %w", err)
	}

	return nil
}

// GetAll returns every proposal plus the voter sets keyed by proposal id.
func (r *ProposalRepository) GetAll() ([]models.Proposal, map[uint64][]string, error) {
	var rows []proposalRow
	query := `SELECT * FROM proposals ORDER BY id`

	err := r.db.Select(&rows, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get proposals: %w", err)
	}

	proposals := make([]models.Proposal, 0, len(rows))
	voters := make(map[uint64][]string, len(rows))
	for _, row := range rows {
		proposals = append(proposals, row.Proposal)
		if len(row.Voters) > 0 {
			voters[row.Proposal.ID] = []string(row.Voters)
		}
	}

	return proposals, voters, nil
}
