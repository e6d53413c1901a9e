package api

import (
	"AlertSentinel/internal/model"
)

// AlertRequest is the webhook body for one incoming alert.
type AlertRequest struct {
	ID        string  `json:"id"`
	Ticker    string  `json:"ticker" validate:"required,max=32"`
	Timeframe string  `json:"timeframe" validate:"required"`
	Indicator string  `json:"indicator" validate:"required"`
	Trigger   string  `json:"trigger" validate:"required"`
	Weight    float64 `json:"weight"`
	Time      string  `json:"time"`
	Timestamp string  `json:"timestamp"`
}

func (r *AlertRequest) toAlert() model.Alert {
	return model.Alert{
		ID:        r.ID,
		Time:      r.Time,
		Timestamp: r.Timestamp,
		Ticker:    r.Ticker,
		Timeframe: r.Timeframe,
		Indicator: r.Indicator,
		Trigger:   r.Trigger,
		Weight:    r.Weight,
	}
}

// StrategyRequest creates or replaces a strategy.
type StrategyRequest struct {
	ID         string            `json:"id"`
	Name       string            `json:"name" validate:"required"`
	Enabled    *bool             `json:"enabled" default:"true"`
	Timeframe  int               `json:"timeframe" validate:"gte=0"`
	Threshold  float64           `json:"threshold"`
	RuleGroups []model.RuleGroup `json:"rule_groups"`
	Rules      []model.Rule      `json:"rules"`
}

func (r *StrategyRequest) toStrategy() model.Strategy {
	return model.Strategy{
		ID:         r.ID,
		Name:       r.Name,
		Enabled:    *r.Enabled,
		Timeframe:  r.Timeframe,
		Threshold:  r.Threshold,
		RuleGroups: r.RuleGroups,
		Rules:      r.Rules,
	}
}

// GroupsRequest selects how alerts are grouped for display.
type GroupsRequest struct {
	By string `query:"by" default:"ticker" validate:"oneof=ticker timeframe"`
}

// AlertExpiry is one alert with its lifecycle state.
type AlertExpiry struct {
	model.Alert
	State     string `json:"state"`
	ExpiresIn string `json:"expiresIn"`
}
