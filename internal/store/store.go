// Package store persists alerts, strategies, retention config and evaluation history.
package store

import (
	"context"
	"errors"

	"AlertSentinel/internal/model"
	"AlertSentinel/internal/strategy"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence boundary the collector and API work against.
type Store interface {
	// SaveAlert appends an alert. Alerts are never updated in place.
	SaveAlert(ctx context.Context, a model.Alert) error
	// RecentAlerts returns up to limit alerts, newest first.
	RecentAlerts(ctx context.Context, limit int) ([]model.Alert, error)
	// SaveStrategy inserts or replaces a strategy by ID, keeping its authored position.
	SaveStrategy(ctx context.Context, s model.Strategy) (model.Strategy, error)
	// Strategies returns all strategies in authored order.
	Strategies(ctx context.Context) ([]model.Strategy, error)
	// TimeframeConfig returns ErrNotFound when no retention config was saved.
	TimeframeConfig(ctx context.Context) (*model.TimeframeConfig, error)
	SaveTimeframeConfig(ctx context.Context, cfg model.TimeframeConfig) error
	// RecordEvaluation keeps an evaluation outcome for later inspection.
	RecordEvaluation(ctx context.Context, res strategy.Result) error
	// LatestEvaluation returns ErrNotFound before the first recorded evaluation.
	LatestEvaluation(ctx context.Context) (*strategy.Result, error)
	Close() error
}
