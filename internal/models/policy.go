package models

import "time"

// ============================================================================
// POLICY (PARAMETRIC COVERAGE INSTANCES)
// ============================================================================

// Policy is one purchased coverage. Premium, coverage, tier, and the validity
// window are fixed at purchase time; only Status changes afterwards.
type Policy struct {
	ID               uint64       `json:"id" db:"id"`
	Holder           string       `json:"holder" db:"holder"`
	Premium          float64      `json:"premium" db:"premium"`
	CoverageAmount   float64      `json:"coverage_amount" db:"coverage_amount"`
	StartTime        time.Time    `json:"start_time" db:"start_time"`
	EndTime          time.Time    `json:"end_time" db:"end_time"`
	MetricType       MetricType   `json:"metric_type" db:"metric_type"`
	TriggerThreshold int64        `json:"trigger_threshold" db:"trigger_threshold"`
	Location         string       `json:"location" db:"location"`
	Status           PolicyStatus `json:"status" db:"status"`
	RiskTier         RiskTier     `json:"risk_tier" db:"risk_tier"`
	// ReceiptOwner is the current owner of the policy receipt. It equals
	// Holder until the receipt is transferred, which is only possible once
	// the policy has left the active state.
	ReceiptOwner string    `json:"receipt_owner" db:"receipt_owner"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// WeatherReading is the latest aggregated value known for a location.
// No history is kept; every submission overwrites the previous reading.
type WeatherReading struct {
	Location    string    `json:"location" db:"location"`
	Value       int64     `json:"value" db:"value"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	Valid       bool      `json:"valid" db:"valid"`
	SourceCount int       `json:"source_count" db:"source_count"`
}
