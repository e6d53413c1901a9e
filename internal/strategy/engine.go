package strategy

import (
	"time"

	"AlertSentinel/internal/grouping"
	"AlertSentinel/internal/indicator"
	"AlertSentinel/internal/model"
	"AlertSentinel/internal/timeframe"
	"AlertSentinel/internal/window"
)

// MaxRecentAlerts is how many of the newest alerts an evaluation considers.
const MaxRecentAlerts = 50

// Result is the output of one evaluation.
type Result struct {
	TickerData  []model.TickerScore `json:"tickerData"`
	LastAction  *model.LastAction   `json:"lastAction"`
	EvaluatedAt time.Time           `json:"evaluatedAt"`
}

// Engine evaluates strategies against a snapshot of recent alerts.
// It holds only immutable tables and is safe for concurrent use.
type Engine struct {
	grouper   *grouping.Grouper
	evaluator *Evaluator
	maxAlerts int
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	timeframes *timeframe.Table
	indicators *indicator.Mapper
	maxAlerts  int
}

// WithTimeframes replaces the default timeframe order.
func WithTimeframes(t *timeframe.Table) Option {
	return func(o *engineOptions) { o.timeframes = t }
}

// WithIndicators replaces the default indicator name table.
func WithIndicators(m *indicator.Mapper) Option {
	return func(o *engineOptions) { o.indicators = m }
}

// WithMaxAlerts changes how many recent alerts are considered.
func WithMaxAlerts(n int) Option {
	return func(o *engineOptions) {
		if n > 0 {
			o.maxAlerts = n
		}
	}
}

// NewEngine creates an Engine with the default tables unless overridden.
func NewEngine(opts ...Option) *Engine {
	o := engineOptions{
		timeframes: timeframe.DefaultTable(),
		indicators: indicator.DefaultMapper(),
		maxAlerts:  MaxRecentAlerts,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		grouper:   grouping.New(o.timeframes),
		evaluator: NewEvaluator(o.indicators),
		maxAlerts: o.maxAlerts,
	}
}

// prepared is a snapshot after windowing: ticker groups in display order, plus
// each ticker's alerts in input order for matching.
type prepared struct {
	alerts   []model.Alert
	groups   []model.TickerGroup
	byTicker map[string][]model.Alert
}

// prepare caps to the newest alerts, normalizes tickers, drops expired alerts,
// dedupes and groups by ticker.
func (e *Engine) prepare(snap model.Snapshot, now time.Time) prepared {
	alerts := snap.Alerts
	if len(alerts) > e.maxAlerts {
		alerts = alerts[:e.maxAlerts]
	}
	normalized := make([]model.Alert, len(alerts))
	for i, a := range alerts {
		a.Ticker = model.NormalizeTicker(a.Ticker)
		normalized[i] = a
	}
	live := window.NewFilter(snap.Timeframes).FilterLive(normalized, now)
	deduped := e.grouper.DedupeLatest(live)

	byTicker := make(map[string][]model.Alert)
	for _, a := range deduped {
		byTicker[a.Ticker] = append(byTicker[a.Ticker], a)
	}
	return prepared{alerts: deduped, groups: e.grouper.GroupByTicker(deduped), byTicker: byTicker}
}

// Groups returns the live alerts of snap grouped for display, prepared exactly
// as an evaluation would see them.
func (e *Engine) Groups(snap model.Snapshot, now time.Time, byTimeframe bool) []model.TickerGroup {
	p := e.prepare(snap, now)
	if byTimeframe {
		return e.grouper.GroupByTickerAndTimeframe(p.alerts)
	}
	return p.groups
}

// Evaluate runs every enabled strategy, in authored order, against every ticker
// group. Each triggered (strategy, ticker) pair yields a row whose MissingAlerts
// carries the action label; the first one becomes the last action unless the
// snapshot carries a backend summary.
func (e *Engine) Evaluate(snap model.Snapshot, now time.Time) Result {
	p := e.prepare(snap, now)

	var (
		rows       []model.TickerScore
		candidates []model.LastAction
	)
	for _, s := range snap.Strategies {
		if !s.Enabled {
			continue
		}
		for _, g := range p.groups {
			alerts := p.byTicker[g.Ticker]
			found, ok := e.evaluator.Match(s, alerts)
			if !ok {
				continue
			}
			action := ActionFromName(s.Name)
			row := e.row(s, g.Ticker, inInputOrder(found, alerts))
			row.MissingAlerts = []string{string(action)}
			rows = append(rows, row)
			candidates = append(candidates, model.LastAction{
				Action:   action,
				Ticker:   g.Ticker,
				Strategy: s.Name,
			})
		}
	}

	return Result{
		TickerData:  rows,
		LastAction:  Resolve(snap.Summary, candidates),
		EvaluatedAt: now,
	}
}

// Synchronize is the legacy synchronized-data mode. Rows are emitted for every
// (strategy, ticker) pair with partial progress and list unmet requirements in
// MissingAlerts; direction comes from the threshold sign.
func (e *Engine) Synchronize(snap model.Snapshot, now time.Time) Result {
	p := e.prepare(snap, now)

	var (
		rows       []model.TickerScore
		candidates []model.LastAction
	)
	for _, s := range snap.Strategies {
		if !s.Enabled {
			continue
		}
		for _, g := range p.groups {
			alerts := p.byTicker[g.Ticker]
			found, missing, complete := e.syncProgress(s, alerts)
			if len(found) == 0 {
				continue
			}
			row := e.row(s, g.Ticker, inInputOrder(found, alerts))
			row.MissingAlerts = missing
			if row.MissingAlerts == nil {
				row.MissingAlerts = []string{}
			}
			rows = append(rows, row)
			if !complete {
				continue
			}
			if action, ok := ActionFromThreshold(s.Threshold); ok {
				candidates = append(candidates, model.LastAction{Action: action, Ticker: g.Ticker, Strategy: s.Name})
			}
		}
	}

	return Result{
		TickerData:  rows,
		LastAction:  Resolve(snap.Summary, candidates),
		EvaluatedAt: now,
	}
}

// syncProgress picks the first satisfied group, or else the group with the most
// matches (first on ties), and reports its found and missing requirements.
func (e *Engine) syncProgress(s model.Strategy, alerts []model.Alert) (found []model.Alert, missing []string, complete bool) {
	switch src := s.Source().(type) {
	case model.FlatSource:
		reqs := ruleRequirements(src.Rules)
		found, missing = e.evaluator.progress(reqs, alerts, false)
		return found, missing, len(missing) == 0 && len(found) > 0
	case model.GroupsSource:
		best := -1
		for _, g := range src.Groups {
			f, m := e.evaluator.progress(groupRequirements(g), alerts, g.IsOr())
			if len(f) > 0 && (len(m) == 0 || g.IsOr()) {
				return f, nil, true
			}
			if len(f) > best {
				best, found, missing = len(f), f, m
			}
		}
		return found, missing, false
	default:
		return nil, nil, false
	}
}

func (e *Engine) row(s model.Strategy, ticker string, found []model.Alert) model.TickerScore {
	names := make([]string, 0, len(found))
	score := 0.0
	for _, a := range found {
		names = append(names, a.Trigger)
		score += a.Weight
	}
	latest := latestAlert(found)
	return model.TickerScore{
		Strategy:    s.Name,
		Ticker:      ticker,
		Timeframe:   timeframe.Normalize(latest.Timeframe),
		Timestamp:   latest.RawTime(),
		AlertsFound: names,
		Score:       score,
	}
}

// inInputOrder reorders found to follow the order alerts arrived in.
func inInputOrder(found, alerts []model.Alert) []model.Alert {
	pending := make(map[model.Alert]int, len(found))
	for _, a := range found {
		pending[a]++
	}
	out := make([]model.Alert, 0, len(found))
	for _, a := range alerts {
		if pending[a] > 0 {
			pending[a]--
			out = append(out, a)
		}
	}
	// Requirements naming the same pair twice reuse one alert.
	for _, a := range found {
		if pending[a] > 0 {
			pending[a]--
			out = append(out, a)
		}
	}
	return out
}

// latestAlert returns the most recently timestamped alert; the first one wins ties.
func latestAlert(alerts []model.Alert) model.Alert {
	var (
		latest model.Alert
		at     time.Time
	)
	for i, a := range alerts {
		t, _ := a.At()
		if i == 0 || t.After(at) {
			latest, at = a, t
		}
	}
	return latest
}
