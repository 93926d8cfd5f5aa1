package repository

import (
	"fmt"

	"weathercover/internal/models"

	"github.com/jmoiron/sqlx"
)

type ReadingRepository struct {
	db *sqlx.DB
}

func NewReadingRepository(db *sqlx.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// Upsert writes the latest reading for a location. One row per location;
// history is not kept, matching the in-memory model.
func (r *ReadingRepository) Upsert(reading *models.WeatherReading) error {
	query := `
		INSERT INTO weather_readings (
			location, value, reading_time, valid, source_count, updated_at
		) VALUES (
			:location, :value, :timestamp, :valid, :source_count, NOW()
		)
		ON CONFLICT (location) DO UPDATE SET
			value = EXCLUDED.value,
			reading_time = EXCLUDED.reading_time,
			valid = EXCLUDED.valid,
			source_count = EXCLUDED.source_count,
			updated_at = NOW()`

	_, err := r.db.NamedExec(query, reading)
	if err != nil {
		return fmt.Errorf("failed to upsert weather reading: %w", err)
	}

	return nil
}

func (r *ReadingRepository) GetAll() ([]models.WeatherReading, error) {
	var readings []models.WeatherReading
	query := `
		SELECT location, value, reading_time AS "timestamp", valid, source_count
		FROM weather_readings`

	err := r.db.Select(&readings, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get weather readings: %w", err)
	}

	return readings, nil
}
