package engine

import "weathercover/internal/models"

// Risk classification and trigger evaluation. Pure functions over the
// metric-specific tier tables; thresholds and readings are scaled signed
// integers (value x 10, one decimal place).

// Coverage multipliers per tier. Strictly decreasing with risk: policies
// that are more likely to trigger get less leverage per premium unit.
const (
	multiplierLow      = 12
	multiplierMedium   = 10
	multiplierHigh     = 8
	multiplierCritical = 6
)

// ClassifyRisk maps a metric type and trigger threshold to a risk tier.
// Boundaries are threshold-direction-aware: for drought a small threshold
// means rainfall must fall below a very low bar to trigger, which is the
// least likely case and therefore the lowest risk; flood, frost, and heat
// follow the same likelihood-of-trigger reasoning in their own direction.
func ClassifyRisk(metric models.MetricType, threshold int64) models.RiskTier {
	switch metric {
	case models.MetricDrought:
		switch {
		case threshold <= 20:
			return models.TierLow
		case threshold <= 50:
			return models.TierMedium
		case threshold <= 100:
			return models.TierHigh
		default:
			return models.TierCritical
		}
	case models.MetricFlood:
		switch {
		case threshold >= 200:
			return models.TierLow
		case threshold >= 100:
			return models.TierMedium
		case threshold >= 50:
			return models.TierHigh
		default:
			return models.TierCritical
		}
	case models.MetricFrost:
		switch {
		case threshold <= -100:
			return models.TierLow
		case threshold <= -20:
			return models.TierMedium
		case threshold <= 20:
			return models.TierHigh
		default:
			return models.TierCritical
		}
	case models.MetricHeat:
		switch {
		case threshold >= 450:
			return models.TierLow
		case threshold >= 400:
			return models.TierMedium
		case threshold >= 350:
			return models.TierHigh
		default:
			return models.TierCritical
		}
	default:
		return models.TierCritical
	}
}

// TierMultiplier returns the coverage multiplier for a tier.
func TierMultiplier(tier models.RiskTier) float64 {
	switch tier {
	case models.TierLow:
		return multiplierLow
	case models.TierMedium:
		return multiplierMedium
	case models.TierHigh:
		return multiplierHigh
	default:
		return multiplierCritical
	}
}

// IsTriggered reports whether a reading breaches a policy threshold.
// Drought and frost trigger when the value falls strictly below the
// threshold; flood and heat when it rises strictly above. Equality never
// triggers.
func IsTriggered(metric models.MetricType, currentValue, threshold int64) bool {
	switch metric {
	case models.MetricDrought, models.MetricFrost:
		return currentValue < threshold
	case models.MetricFlood, models.MetricHeat:
		return currentValue > threshold
	default:
		return false
	}
}
