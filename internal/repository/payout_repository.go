package repository

import (
	"fmt"
	"time"

	"weathercover/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PayoutRepository struct {
	db *sqlx.DB
}

func NewPayoutRepository(db *sqlx.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

// Create appends one journal entry. The journal is append-only; rows are
// never updated or deleted.
func (r *PayoutRepository) Create(payout *models.Payout) error {
	if payout.ID == "" {
		payout.ID = uuid.New().String()
	}
	if payout.CreatedAt.IsZero() {
		payout.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO payouts (
			id, policy_id, recipient, amount, kind, created_at
		) VALUES (
			:id, :policy_id, :recipient, :amount, :kind, :created_at
		)`

	_, err := r.db.NamedExec(query, payout)
	if err != nil {
		return fmt.Errorf("failed to create payout record: %w", err)
	}

	return nil
}

func (r *PayoutRepository) GetByRecipient(recipient string) ([]models.Payout, error) {
	var payouts []models.Payout
	query := `SELECT * FROM payouts WHERE recipient = $1 ORDER BY created_at DESC`

	err := r.db.Select(&payouts, query, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to get payouts by recipient: %w", err)
	}

	return payouts, nil
}
