package strategy

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AlertSentinel/internal/model"
)

var evalNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func discountSnapshot() model.Snapshot {
	return model.Snapshot{
		Alerts: []model.Alert{
			{ID: "1", Ticker: "BTC", Timeframe: "15m", Indicator: "Nautilus™", Trigger: "Normal Bullish Divergence", Weight: 2.3, Time: "10:00:00"},
			{ID: "2", Ticker: "BTC", Timeframe: "15m", Indicator: "Extreme Zones", Trigger: "Discount Zone", Weight: 1.9, Time: "10:01:00"},
		},
		Strategies: []model.Strategy{{
			Name:    "Buy on discount zone",
			Enabled: true,
			Rules: []model.Rule{
				{Indicator: "extreme_zones", Trigger: "Discount Zone"},
				{Indicator: "nautilus", Trigger: "Normal Bullish Divergence"},
			},
		}},
	}
}

func TestEvaluate_EndToEnd(t *testing.T) {
	res := NewEngine().Evaluate(discountSnapshot(), evalNow)

	require.Len(t, res.TickerData, 1)
	row := res.TickerData[0]
	assert.Equal(t, "Buy on discount zone", row.Strategy)
	assert.Equal(t, "BTC", row.Ticker)
	assert.InDelta(t, 4.2, row.Score, 1e-9)
	assert.Equal(t, []string{"Normal Bullish Divergence", "Discount Zone"}, row.AlertsFound)
	assert.Equal(t, []string{"Buy"}, row.MissingAlerts)
	assert.Equal(t, "10:01:00", row.Timestamp, "timestamp comes from the newest contributing alert")
	assert.Equal(t, "15m", row.Timeframe)

	require.NotNil(t, res.LastAction)
	assert.Equal(t, model.LastAction{Action: model.ActionBuy, Ticker: "BTC", Strategy: "Buy on discount zone"}, *res.LastAction)
	assert.Equal(t, evalNow, res.EvaluatedAt)
}

func TestEvaluate_Idempotent(t *testing.T) {
	e := NewEngine()
	snap := discountSnapshot()
	assert.Equal(t, e.Evaluate(snap, evalNow), e.Evaluate(snap, evalNow))
}

func TestEvaluate_ConcurrentCallers(t *testing.T) {
	e := NewEngine()
	snap := discountSnapshot()
	want := e.Evaluate(snap, evalNow)

	var wg sync.WaitGroup
	results := make([]Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Evaluate(snap, evalNow)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

func TestEvaluate_DisabledStrategyNeverAppears(t *testing.T) {
	snap := discountSnapshot()
	snap.Strategies[0].Enabled = false

	res := NewEngine().Evaluate(snap, evalNow)
	assert.Empty(t, res.TickerData)
	assert.Nil(t, res.LastAction)
}

func TestEvaluate_SummaryOverridesLocalAction(t *testing.T) {
	snap := discountSnapshot()
	snap.Summary = &model.ScoreSummary{LastAction: &model.SummaryAction{
		Action: model.ActionSell, Ticker: "ETH", StrategyName: "Backend pick",
	}}

	res := NewEngine().Evaluate(snap, evalNow)
	require.Len(t, res.TickerData, 1, "summary does not change the score table")
	require.NotNil(t, res.LastAction)
	assert.Equal(t, model.LastAction{Action: model.ActionSell, Ticker: "ETH", Strategy: "Backend pick"}, *res.LastAction)
}

func TestEvaluate_DirectionHeuristic(t *testing.T) {
	snap := model.Snapshot{
		Alerts: []model.Alert{
			{Ticker: "ETHUSD", Timeframe: "1h", Indicator: "extreme_zones", Trigger: "Premium Zone", Weight: -2, Timestamp: "2024-06-01T11:50:00Z"},
		},
		Strategies: []model.Strategy{{
			Name:      "Sell on Premium zone",
			Enabled:   true,
			Threshold: 5,
			RuleGroups: []model.RuleGroup{{Operator: model.OperatorOr, Alerts: []model.RuleAlert{
				{Indicator: "Extreme Zones", Trigger: "Premium Zone"},
			}}},
		}},
	}
	res := NewEngine().Evaluate(snap, evalNow)
	require.NotNil(t, res.LastAction)
	assert.Equal(t, model.ActionSell, res.LastAction.Action, "live path ignores the threshold sign")
	assert.Equal(t, "ETH", res.LastAction.Ticker, "quote suffix is stripped")
}

func TestEvaluate_FirstFoundWinsAcrossStrategiesAndTickers(t *testing.T) {
	orWaves := []model.RuleGroup{{Operator: model.OperatorOr, Alerts: []model.RuleAlert{{Indicator: "market_waves", Trigger: "Buy"}}}}
	snap := model.Snapshot{
		Alerts: []model.Alert{
			{Ticker: "SOL", Timeframe: "1h", Indicator: "market_waves", Trigger: "Buy", Weight: 9, Timestamp: "2024-06-01T11:59:00Z"},
			{Ticker: "ADA", Timeframe: "1h", Indicator: "market_waves", Trigger: "Buy", Weight: 1, Timestamp: "2024-06-01T11:58:00Z"},
		},
		Strategies: []model.Strategy{
			{Name: "Disabled", Enabled: false, RuleGroups: orWaves},
			{Name: "Waves A", Enabled: true, RuleGroups: orWaves},
			{Name: "Waves B", Enabled: true, RuleGroups: orWaves},
		},
	}
	res := NewEngine().Evaluate(snap, evalNow)
	require.Len(t, res.TickerData, 4)
	assert.Equal(t, "Waves A", res.TickerData[0].Strategy)
	assert.Equal(t, "ADA", res.TickerData[0].Ticker, "tickers follow group order")
	assert.Equal(t, "SOL", res.TickerData[1].Ticker)

	require.NotNil(t, res.LastAction)
	assert.Equal(t, "Waves A", res.LastAction.Strategy)
	assert.Equal(t, "ADA", res.LastAction.Ticker, "first found wins, not highest score")
}

func TestEvaluate_ExpiredAlertsExcluded(t *testing.T) {
	snap := discountSnapshot()
	snap.Alerts[0].Time = ""
	snap.Alerts[0].Timestamp = evalNow.Add(-20 * time.Minute).Format(time.RFC3339)
	snap.Alerts[1].Time = ""
	snap.Alerts[1].Timestamp = evalNow.Add(-5 * time.Minute).Format(time.RFC3339)
	snap.Timeframes = &model.TimeframeConfig{GlobalDefault: 60, Overrides: map[string]int{"15": 15}}

	res := NewEngine().Evaluate(snap, evalNow)
	assert.Empty(t, res.TickerData)

	snap.Timeframes.Overrides["15"] = 30
	res = NewEngine().Evaluate(snap, evalNow)
	assert.Len(t, res.TickerData, 1)
}

func TestEvaluate_ClockOnlyTimesUnderRetention(t *testing.T) {
	snap := discountSnapshot()
	snap.Timeframes = &model.TimeframeConfig{GlobalDefault: 240}

	res := NewEngine().Evaluate(snap, evalNow)
	require.Len(t, res.TickerData, 1, "clock-only times are placed on the evaluation date")
	assert.InDelta(t, 4.2, res.TickerData[0].Score, 1e-9)
	require.NotNil(t, res.LastAction)

	snap.Timeframes = &model.TimeframeConfig{GlobalDefault: 60}
	res = NewEngine().Evaluate(snap, evalNow)
	assert.Empty(t, res.TickerData, "two hours old under a one hour window")
}

func TestEvaluate_DuplicateAlertsCountOnce(t *testing.T) {
	snap := discountSnapshot()
	dup := snap.Alerts[1]
	dup.ID = "3"
	dup.Time = "09:00:00"
	dup.Weight = 100
	snap.Alerts = append(snap.Alerts, dup)

	res := NewEngine().Evaluate(snap, evalNow)
	require.Len(t, res.TickerData, 1)
	assert.InDelta(t, 4.2, res.TickerData[0].Score, 1e-9, "older duplicate is collapsed")
}

func TestEvaluate_OnlyNewestAlertsConsidered(t *testing.T) {
	var alerts []model.Alert
	for i := 0; i < 60; i++ {
		alerts = append(alerts, model.Alert{
			Ticker:    "BTC",
			Timeframe: "5m",
			Indicator: "filler",
			Trigger:   fmt.Sprintf("noise-%d", i),
		})
	}
	alerts = append(alerts, model.Alert{Ticker: "BTC", Timeframe: "5m", Indicator: "market_core", Trigger: "Bullish"})
	snap := model.Snapshot{
		Alerts: alerts,
		Strategies: []model.Strategy{{Name: "Core", Enabled: true, Rules: []model.Rule{{Indicator: "market_core", Trigger: "Bullish"}}}},
	}

	assert.Empty(t, NewEngine().Evaluate(snap, evalNow).TickerData)
	assert.Len(t, NewEngine(WithMaxAlerts(100)).Evaluate(snap, evalNow).TickerData, 1)
}

func TestSynchronize_ReportsMissingAndUsesThreshold(t *testing.T) {
	snap := discountSnapshot()
	snap.Alerts = snap.Alerts[:1]
	snap.Strategies[0].Threshold = 3

	res := NewEngine().Synchronize(snap, evalNow)
	require.Len(t, res.TickerData, 1)
	assert.Equal(t, []string{"Discount Zone"}, res.TickerData[0].MissingAlerts)
	assert.Equal(t, []string{"Normal Bullish Divergence"}, res.TickerData[0].AlertsFound)
	assert.Nil(t, res.LastAction, "incomplete strategies do not act")

	snap = discountSnapshot()
	snap.Strategies[0].Name = "Sell-named but positive threshold"
	snap.Strategies[0].Threshold = 3
	res = NewEngine().Synchronize(snap, evalNow)
	require.Len(t, res.TickerData, 1)
	assert.Empty(t, res.TickerData[0].MissingAlerts)
	require.NotNil(t, res.LastAction)
	assert.Equal(t, model.ActionBuy, res.LastAction.Action)

	snap.Strategies[0].Threshold = -3
	res = NewEngine().Synchronize(snap, evalNow)
	require.NotNil(t, res.LastAction)
	assert.Equal(t, model.ActionSell, res.LastAction.Action)

	snap.Strategies[0].Threshold = 0
	res = NewEngine().Synchronize(snap, evalNow)
	assert.Nil(t, res.LastAction)
}

func TestSynchronize_GroupsPickBestProgress(t *testing.T) {
	snap := model.Snapshot{
		Alerts: []model.Alert{nautilusBull},
		Strategies: []model.Strategy{{
			Name:      "Groups",
			Enabled:   true,
			Threshold: 1,
			RuleGroups: []model.RuleGroup{
				orGroup(),
				andGroup(),
			},
		}},
	}
	res := NewEngine().Synchronize(snap, evalNow)
	require.Len(t, res.TickerData, 1)
	assert.Equal(t, []string{"Discount Zone"}, res.TickerData[0].MissingAlerts)
	assert.Nil(t, res.LastAction)
}

func TestGroups(t *testing.T) {
	snap := discountSnapshot()
	snap.Alerts = append(snap.Alerts,
		model.Alert{ID: "3", Ticker: "ETHUSDT", Timeframe: "1h", Indicator: "market_waves", Trigger: "Buy", Time: "09:00:00"},
		model.Alert{ID: "4", Ticker: "BTC", Timeframe: "4h", Indicator: "nautilus", Trigger: "Bullish", Time: "09:30:00"},
	)
	e := NewEngine()

	byTicker := e.Groups(snap, evalNow, false)
	require.Len(t, byTicker, 2)
	assert.Equal(t, "BTC", byTicker[0].Ticker)
	assert.Len(t, byTicker[0].Alerts, 3)
	assert.Equal(t, "ETH", byTicker[1].Ticker, "tickers are normalized before grouping")

	byTF := e.Groups(snap, evalNow, true)
	require.Len(t, byTF, 3)
	assert.Equal(t, "15m", byTF[0].Timeframe)
	assert.Equal(t, "4h", byTF[1].Timeframe)
	assert.Equal(t, "ETH", byTF[2].Ticker)
}
