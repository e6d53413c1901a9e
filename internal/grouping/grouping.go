// Package grouping collapses duplicate alerts and groups them for evaluation and display.
package grouping

import (
	"sort"
	"time"

	"AlertSentinel/internal/model"
	"AlertSentinel/internal/timeframe"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Grouper orders alerts using an injected timeframe table.
type Grouper struct {
	timeframes *timeframe.Table
	lang       language.Tag
}

// New creates a Grouper. Ticker names are collated with English rules.
func New(timeframes *timeframe.Table) *Grouper {
	return &Grouper{timeframes: timeframes, lang: language.English}
}

type dedupeKey struct {
	ticker, timeframe, indicator, trigger string
}

// DedupeLatest keeps the most recent alert per (ticker, timeframe, indicator, trigger).
// Ties keep the first alert seen; output follows the first appearance of each key.
func (g *Grouper) DedupeLatest(alerts []model.Alert) []model.Alert {
	index := make(map[dedupeKey]int, len(alerts))
	stamps := make([]time.Time, 0, len(alerts))
	out := make([]model.Alert, 0, len(alerts))
	for _, a := range alerts {
		k := dedupeKey{a.Ticker, timeframe.Normalize(a.Timeframe), a.Indicator, a.Trigger}
		at, _ := a.At()
		i, seen := index[k]
		if !seen {
			index[k] = len(out)
			out = append(out, a)
			stamps = append(stamps, at)
			continue
		}
		if at.After(stamps[i]) {
			out[i] = a
			stamps[i] = at
		}
	}
	return out
}

// GroupByTicker dedupes alerts and groups them by raw ticker.
func (g *Grouper) GroupByTicker(alerts []model.Alert) []model.TickerGroup {
	return g.group(alerts, false)
}

// GroupByTickerAndTimeframe dedupes alerts and groups them by (ticker, timeframe).
func (g *Grouper) GroupByTickerAndTimeframe(alerts []model.Alert) []model.TickerGroup {
	return g.group(alerts, true)
}

type groupKey struct {
	ticker, timeframe string
}

func (g *Grouper) group(alerts []model.Alert, byTimeframe bool) []model.TickerGroup {
	deduped := g.DedupeLatest(alerts)

	index := make(map[groupKey]int)
	var groups []model.TickerGroup
	for _, a := range deduped {
		k := groupKey{ticker: a.Ticker}
		if byTimeframe {
			k.timeframe = timeframe.Normalize(a.Timeframe)
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, model.TickerGroup{Ticker: k.ticker, Timeframe: k.timeframe})
		}
		groups[i].Alerts = append(groups[i].Alerts, a)
	}

	for i := range groups {
		g.sortAlerts(groups[i].Alerts)
	}

	// Collators keep internal buffers, so each call gets its own.
	col := collate.New(g.lang)
	sort.SliceStable(groups, func(i, j int) bool {
		if c := col.CompareString(groups[i].Ticker, groups[j].Ticker); c != 0 {
			return c < 0
		}
		return g.timeframes.Compare(groups[i].Timeframe, groups[j].Timeframe) < 0
	})
	return groups
}

// sortAlerts orders by timeframe ascending, then newest first.
func (g *Grouper) sortAlerts(alerts []model.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		if c := g.timeframes.Compare(alerts[i].Timeframe, alerts[j].Timeframe); c != 0 {
			return c < 0
		}
		ti, _ := alerts[i].At()
		tj, _ := alerts[j].At()
		return ti.After(tj)
	})
}
