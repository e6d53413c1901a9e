package model

// Action is the trade direction a completed strategy implies.
type Action string

const (
	ActionBuy  Action = "Buy"
	ActionSell Action = "Sell"
)

// TickerScore is one (strategy, ticker) row of an evaluation.
type TickerScore struct {
	Strategy    string   `json:"strategy"`
	Ticker      string   `json:"ticker"`
	Timeframe   string   `json:"timeframe"`
	Timestamp   string   `json:"timestamp"`
	AlertsFound []string `json:"alertsFound"`
	// MissingAlerts lists unmet requirements in synchronized mode and carries
	// the resolved action label in live mode.
	MissingAlerts []string `json:"missingAlerts"`
	Score         float64  `json:"score"`
}

// LastAction is the single triggered decision surfaced for an evaluation.
type LastAction struct {
	Action    Action `json:"action"`
	Ticker    string `json:"ticker"`
	Strategy  string `json:"strategy"`
	Timestamp string `json:"timestamp,omitempty"`
}

// SummaryAction is the precomputed last action carried by a backend score summary.
type SummaryAction struct {
	Action       Action `json:"action"`
	Ticker       string `json:"ticker"`
	StrategyName string `json:"strategy_name"`
	Timestamp    string `json:"timestamp,omitempty"`
}

// ScoreSummary is the optional summary handed in by the scoring backend.
type ScoreSummary struct {
	LastAction *SummaryAction `json:"lastAction,omitempty"`
}

// Snapshot is one immutable input to an evaluation.
type Snapshot struct {
	Alerts     []Alert          `json:"alerts"`
	Strategies []Strategy       `json:"strategies"`
	Timeframes *TimeframeConfig `json:"timeframes,omitempty"`
	Summary    *ScoreSummary    `json:"summary,omitempty"`
}

// TimeframeConfig maps timeframe labels to alert retention windows in minutes.
type TimeframeConfig struct {
	GlobalDefault int            `json:"globalDefault" yaml:"global_default" validate:"gte=0"`
	Overrides     map[string]int `json:"overrides,omitempty" yaml:"overrides" validate:"dive,gte=0"`
}
