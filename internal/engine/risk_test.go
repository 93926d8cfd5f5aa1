package engine

import (
	"testing"

	"weathercover/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRisk_Drought(t *testing.T) {
	assert.Equal(t, models.TierLow, ClassifyRisk(models.MetricDrought, 20))
	assert.Equal(t, models.TierMedium, ClassifyRisk(models.MetricDrought, 21))
	assert.Equal(t, models.TierMedium, ClassifyRisk(models.MetricDrought, 50))
	assert.Equal(t, models.TierHigh, ClassifyRisk(models.MetricDrought, 100))
	assert.Equal(t, models.TierCritical, ClassifyRisk(models.MetricDrought, 101))
}

func TestClassifyRisk_FloodInverted(t *testing.T) {
	// Flood boundaries run the other way: a higher threshold needs more
	// rain to trigger, so it is the safer policy.
	assert.Equal(t, models.TierLow, ClassifyRisk(models.MetricFlood, 200))
	assert.Equal(t, models.TierMedium, ClassifyRisk(models.MetricFlood, 199))
	assert.Equal(t, models.TierMedium, ClassifyRisk(models.MetricFlood, 100))
	assert.Equal(t, models.TierHigh, ClassifyRisk(models.MetricFlood, 50))
	assert.Equal(t, models.TierCritical, ClassifyRisk(models.MetricFlood, 49))
}

func TestClassifyRisk_Frost(t *testing.T) {
	assert.Equal(t, models.TierLow, ClassifyRisk(models.MetricFrost, -100))
	assert.Equal(t, models.TierMedium, ClassifyRisk(models.MetricFrost, -99))
	assert.Equal(t, models.TierMedium, ClassifyRisk(models.MetricFrost, -20))
	assert.Equal(t, models.TierHigh, ClassifyRisk(models.MetricFrost, 20))
	assert.Equal(t, models.TierCritical, ClassifyRisk(models.MetricFrost, 21))
}

func TestClassifyRisk_Heat(t *testing.T) {
	assert.Equal(t, models.TierLow, ClassifyRisk(models.MetricHeat, 450))
	assert.Equal(t, models.TierMedium, ClassifyRisk(models.MetricHeat, 449))
	assert.Equal(t, models.TierMedium, ClassifyRisk(models.MetricHeat, 400))
	assert.Equal(t, models.TierHigh, ClassifyRisk(models.MetricHeat, 350))
	assert.Equal(t, models.TierCritical, ClassifyRisk(models.MetricHeat, 349))
}

func TestTierMultiplier_DecreasesWithRisk(t *testing.T) {
	assert.Equal(t, 12.0, TierMultiplier(models.TierLow))
	assert.Equal(t, 10.0, TierMultiplier(models.TierMedium))
	assert.Equal(t, 8.0, TierMultiplier(models.TierHigh))
	assert.Equal(t, 6.0, TierMultiplier(models.TierCritical))
}

func TestIsTriggered_DroughtFrostBelowThreshold(t *testing.T) {
	assert.True(t, IsTriggered(models.MetricDrought, 99, 100))
	assert.False(t, IsTriggered(models.MetricDrought, 100, 100), "equality never triggers")
	assert.False(t, IsTriggered(models.MetricDrought, 101, 100))

	assert.True(t, IsTriggered(models.MetricFrost, -30, -20))
	assert.False(t, IsTriggered(models.MetricFrost, -20, -20))
	assert.False(t, IsTriggered(models.MetricFrost, 0, -20))
}

func TestIsTriggered_FloodHeatAboveThreshold(t *testing.T) {
	assert.True(t, IsTriggered(models.MetricFlood, 151, 150))
	assert.False(t, IsTriggered(models.MetricFlood, 150, 150), "equality never triggers")
	assert.False(t, IsTriggered(models.MetricFlood, 149, 150))

	assert.True(t, IsTriggered(models.MetricHeat, 401, 400))
	assert.False(t, IsTriggered(models.MetricHeat, 400, 400))
	assert.False(t, IsTriggered(models.MetricHeat, 399, 400))
}

func TestIsTriggered_Monotonic(t *testing.T) {
	// For drought, once a rising value crosses the threshold, claimable
	// flips from true to false and never back.
	triggered := true
	for value := int64(90); value <= 110; value++ {
		current := IsTriggered(models.MetricDrought, value, 100)
		if !triggered {
			assert.False(t, current, "claimable must not flip back to true at value %d", value)
		}
		triggered = current
	}
}
