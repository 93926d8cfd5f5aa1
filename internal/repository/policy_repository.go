package repository

import (
	"fmt"
	"time"

	"weathercover/internal/models"

	"github.com/jmoiron/sqlx"
)

type PolicyRepository struct {
	db *sqlx.DB
}

func NewPolicyRepository(db *sqlx.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// Upsert writes the policy row, replacing any previous version. The
// engine is the source of truth, so the mirror always takes the latest
// state wholesale.
func (r *PolicyRepository) Upsert(policy *models.Policy) error {
	policy.UpdatedAt = time.Now()

	query := `
		INSERT INTO policies (
			id, holder, premium, coverage_amount, start_time, end_time,
			metric_type, trigger_threshold, location, status, risk_tier,
			receipt_owner, created_at, updated_at
		) VALUES (
			:id, :holder, :premium, :coverage_amount, :start_time, :end_time,
			:metric_type, :trigger_threshold, :location, :status, :risk_tier,
			:receipt_owner, :created_at, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			receipt_owner = EXCLUDED.receipt_owner,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExec(query, policy)
	if err != nil {
		return fmt.Errorf("failed to upsert policy: %w", err)
	}

	return nil
}

func (r *PolicyRepository) GetByID(id uint64) (*models.Policy, error) {
	var policy models.Policy
	query := `SELECT * FROM policies WHERE id = $1`

	err := r.db.Get(&policy, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	return &policy, nil
}

func (r *PolicyRepository) GetAll() ([]models.Policy, error) {
	var policies []models.Policy
	query := `SELECT * FROM policies ORDER BY id`

	err := r.db.Select(&policies, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get policies: %w", err)
	}

	return policies, nil
}

func (r *PolicyRepository) GetByHolder(holder string) ([]models.Policy, error) {
	var policies []models.Policy
	query := `SELECT * FROM policies WHERE holder = $1 ORDER BY id`

	err := r.db.Select(&policies, query, holder)
	if err != nil {
		return nil, fmt.Errorf("failed to get policies by holder: %w", err)
	}

	return policies, nil
}
