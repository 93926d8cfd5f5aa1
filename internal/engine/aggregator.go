package engine

import (
	"sort"
	"strings"

	"weathercover/internal/models"
)

// Reading submission. Only the latest reading per location is kept; the
// submitted value overwrites whatever was stored before. Staleness is the
// claims path's concern, not storage's.

// SubmitReading stores a single-source value for a location, trusted as-is.
// Authority or owner only.
func (e *Engine) SubmitReading(caller, location string, value int64) (models.WeatherReading, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isAuthority(caller) {
		return models.WeatherReading{}, ErrUnauthorized
	}
	if strings.TrimSpace(location) == "" {
		return models.WeatherReading{}, ErrInvalidInput
	}

	reading := models.WeatherReading{
		Location:    location,
		Value:       value,
		Timestamp:   e.clock.Now(),
		Valid:       true,
		SourceCount: 1,
	}
	e.readings[location] = reading
	return reading, nil
}

// SubmitAggregatedReading combines exactly three values from independent
// sources into their median and stores the result. Median rather than
// mean: a single compromised or erratic source cannot move the stored
// value. Authority or owner only.
func (e *Engine) SubmitAggregatedReading(caller, location string, values []int64) (models.WeatherReading, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isAuthority(caller) {
		return models.WeatherReading{}, ErrUnauthorized
	}
	if strings.TrimSpace(location) == "" || len(values) != 3 {
		return models.WeatherReading{}, ErrInvalidInput
	}

	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	reading := models.WeatherReading{
		Location:    location,
		Value:       sorted[1],
		Timestamp:   e.clock.Now(),
		Valid:       true,
		SourceCount: 3,
	}
	e.readings[location] = reading
	return reading, nil
}

// GetReading returns the latest reading for a location.
func (e *Engine) GetReading(location string) (models.WeatherReading, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	reading, ok := e.readings[location]
	if !ok {
		return models.WeatherReading{}, ErrNotFound
	}
	return reading, nil
}
