package repository

import (
	"fmt"
	"time"

	"weathercover/internal/models"

	"github.com/jmoiron/sqlx"
)

type PositionRepository struct {
	db *sqlx.DB
}

func NewPositionRepository(db *sqlx.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// Upsert writes the provider's position. A fully withdrawn position stays
// as a zero-share row, preserving the deposit history.
func (r *PositionRepository) Upsert(position *models.LPPosition) error {
	position.UpdatedAt = time.Now()

	query := `
		INSERT INTO lp_positions (
			provider, deposited, shares, updated_at
		) VALUES (
			:provider, :deposited, :shares, :updated_at
		)
		ON CONFLICT (provider) DO UPDATE SET
			deposited = EXCLUDED.deposited,
			shares = EXCLUDED.shares,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExec(query, position)
	if err != nil {
		return fmt.Errorf("failed to upsert LP position: %w", err)
	}

	return nil
}

func (r *PositionRepository) GetAll() ([]models.LPPosition, error) {
	var positions []models.LPPosition
	query := `SELECT * FROM lp_positions`

	err := r.db.Select(&positions, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get LP positions: %w", err)
	}

	return positions, nil
}
