package event

import (
	"time"

	"weathercover/internal/models"
)

const (
	ReadingQueue    = "weather_reading_events"
	PolicyQueue     = "policy_events"
	GovernanceQueue = "governance_events"
)

type PolicyEventType string

const (
	PolicyPurchased PolicyEventType = "purchased"
	PolicyClaimed   PolicyEventType = "claimed"
	PolicyExpired   PolicyEventType = "expired"
	PolicyCancelled PolicyEventType = "cancelled"
)

// ReadingEvent is emitted for every stored reading update.
type ReadingEvent struct {
	ID          string    `json:"id"`
	Location    string    `json:"location"`
	Value       int64     `json:"value"`
	Timestamp   time.Time `json:"timestamp"`
	SourceCount int       `json:"source_count"`
}

// PolicyEvent is emitted for policy lifecycle transitions. Amount is the
// payout or refund that accompanied the transition, zero otherwise.
type PolicyEvent struct {
	ID        string            `json:"id"`
	EventType PolicyEventType   `json:"event_type"`
	PolicyID  uint64            `json:"policy_id"`
	Holder    string            `json:"holder"`
	Metric    models.MetricType `json:"metric_type"`
	Location  string            `json:"location"`
	Amount    float64           `json:"amount"`
	Timestamp time.Time         `json:"timestamp"`
}

// GovernanceEvent is emitted when a proposal is finalized.
type GovernanceEvent struct {
	ID         string                `json:"id"`
	ProposalID uint64                `json:"proposal_id"`
	ParamName  string                `json:"param_name"`
	NewValue   float64               `json:"new_value"`
	Status     models.ProposalStatus `json:"status"`
	Timestamp  time.Time             `json:"timestamp"`
}
