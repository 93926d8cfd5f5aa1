package models

type MetricType string

const (
	MetricDrought MetricType = "drought"
	MetricFlood   MetricType = "flood"
	MetricFrost   MetricType = "frost"
	MetricHeat    MetricType = "heat"
)

type PolicyStatus string

const (
	PolicyActive    PolicyStatus = "active"
	PolicyClaimed   PolicyStatus = "claimed"
	PolicyExpired   PolicyStatus = "expired"
	PolicyCancelled PolicyStatus = "cancelled"
)

type RiskTier string

const (
	TierLow      RiskTier = "low"
	TierMedium   RiskTier = "medium"
	TierHigh     RiskTier = "high"
	TierCritical RiskTier = "critical"
)

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
	ProposalExecuted ProposalStatus = "executed"
)

// Governable parameter names. Anything else passed to a proposal is
// tolerated and becomes a no-op on execution.
const (
	ParamMinPremium         = "min_premium"
	ParamPolicyDuration     = "policy_duration_seconds"
	ParamProtocolFeePercent = "protocol_fee_percent"
)
