// Package collector assembles evaluation snapshots from storage and the backend summary.
package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"AlertSentinel/internal/model"
	"AlertSentinel/internal/store"
	"AlertSentinel/internal/summary"
)

// Collector orchestrates the reads behind one evaluation.
type Collector struct {
	Fetcher   Fetcher
	Summary   summary.Source
	MaxAlerts int
	// Timeframes is the static retention config used when storage has none.
	Timeframes *model.TimeframeConfig
}

// NewCollector creates a new Collector. A nil summary source means no summary.
func NewCollector(fetcher Fetcher, src summary.Source, maxAlerts int, timeframes *model.TimeframeConfig) *Collector {
	if src == nil {
		src = summary.NoopSource{}
	}
	return &Collector{Fetcher: fetcher, Summary: src, MaxAlerts: maxAlerts, Timeframes: timeframes}
}

// Collect reads alerts, strategies, retention config and summary into a snapshot.
// Alerts and strategies are required; the rest degrade with a warning.
func (c *Collector) Collect(ctx context.Context) (model.Snapshot, error) {
	alerts, err := c.Fetcher.RecentAlerts(ctx, c.MaxAlerts)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("fetch alerts: %w", err)
	}
	strategies, err := c.Fetcher.Strategies(ctx)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("fetch strategies: %w", err)
	}

	snap := model.Snapshot{Alerts: alerts, Strategies: strategies, Timeframes: c.Timeframes}

	switch tf, err := c.Fetcher.TimeframeConfig(ctx); {
	case err == nil:
		snap.Timeframes = tf
	case errors.Is(err, store.ErrNotFound):
	default:
		log.Warn().Err(err).Msg("timeframe config unavailable, using static config")
	}

	switch sum, err := c.Summary.Latest(ctx); {
	case err == nil:
		snap.Summary = sum
	case errors.Is(err, summary.ErrNoSummary):
	default:
		log.Warn().Err(err).Msg("score summary unavailable, resolving locally")
	}

	return snap, nil
}
