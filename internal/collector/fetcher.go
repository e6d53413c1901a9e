package collector

import (
	"context"

	"AlertSentinel/internal/model"
	"AlertSentinel/internal/store"
)

// Fetcher is the read side of the store the collector needs.
type Fetcher interface {
	RecentAlerts(ctx context.Context, limit int) ([]model.Alert, error)
	Strategies(ctx context.Context) ([]model.Strategy, error)
	TimeframeConfig(ctx context.Context) (*model.TimeframeConfig, error)
}

// StaticFetcher serves a fixed snapshot, for offline evaluation and tests.
type StaticFetcher struct {
	Snapshot model.Snapshot
}

func (f *StaticFetcher) RecentAlerts(_ context.Context, limit int) ([]model.Alert, error) {
	alerts := f.Snapshot.Alerts
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}

func (f *StaticFetcher) Strategies(context.Context) ([]model.Strategy, error) {
	return f.Snapshot.Strategies, nil
}

func (f *StaticFetcher) TimeframeConfig(context.Context) (*model.TimeframeConfig, error) {
	if f.Snapshot.Timeframes == nil {
		return nil, store.ErrNotFound
	}
	return f.Snapshot.Timeframes, nil
}
