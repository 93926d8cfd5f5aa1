package models

import (
	"errors"
	"fmt"
	"strings"
)

// Helper functions for validation

func isValidMetricType(metric MetricType) bool {
	switch metric {
	case MetricDrought, MetricFlood, MetricFrost, MetricHeat:
		return true
	default:
		return false
	}
}

type PurchasePolicyRequest struct {
	MetricType       MetricType `json:"metric_type"`
	TriggerThreshold int64      `json:"trigger_threshold"`
	Location         string     `json:"location"`
	Premium          float64    `json:"premium"`
}

func (r PurchasePolicyRequest) Validate() error {
	if !isValidMetricType(r.MetricType) {
		return fmt.Errorf("invalid metric_type: %s", r.MetricType)
	}
	if strings.TrimSpace(r.Location) == "" {
		return errors.New("location is required")
	}
	if r.Premium <= 0 {
		return errors.New("premium must be positive")
	}
	return nil
}

type ProcessClaimRequest struct {
	ObservedValue int64 `json:"observed_value"`
}

type TransferReceiptRequest struct {
	To string `json:"to"`
}

func (r TransferReceiptRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return errors.New("to is required")
	}
	return nil
}

type DepositRequest struct {
	Amount float64 `json:"amount"`
}

func (r DepositRequest) Validate() error {
	if r.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	return nil
}

type WithdrawRequest struct {
	Shares float64 `json:"shares"`
}

func (r WithdrawRequest) Validate() error {
	if r.Shares <= 0 {
		return errors.New("shares must be positive")
	}
	return nil
}

type CreateProposalRequest struct {
	ParamName string  `json:"param_name"`
	NewValue  float64 `json:"new_value"`
}

func (r CreateProposalRequest) Validate() error {
	if strings.TrimSpace(r.ParamName) == "" {
		return errors.New("param_name is required")
	}
	return nil
}

type VoteRequest struct {
	Support bool `json:"support"`
}

// SubmitReadingRequest carries either a single trusted value or exactly
// three values from independent sources for one location.
type SubmitReadingRequest struct {
	Location string  `json:"location"`
	Value    *int64  `json:"value,omitempty"`
	Values   []int64 `json:"values,omitempty"`
}

func (r SubmitReadingRequest) Validate() error {
	if strings.TrimSpace(r.Location) == "" {
		return errors.New("location is required")
	}
	if r.Value == nil && len(r.Values) == 0 {
		return errors.New("value or values is required")
	}
	if r.Value != nil && len(r.Values) > 0 {
		return errors.New("value and values are mutually exclusive")
	}
	return nil
}

type SetPriceRequest struct {
	PriceUSD float64 `json:"price_usd"`
}

func (r SetPriceRequest) Validate() error {
	if r.PriceUSD <= 0 {
		return errors.New("price_usd must be positive")
	}
	return nil
}

type SetAuthorityRequest struct {
	Authority string `json:"authority"`
}

func (r SetAuthorityRequest) Validate() error {
	if strings.TrimSpace(r.Authority) == "" {
		return errors.New("authority is required")
	}
	return nil
}
