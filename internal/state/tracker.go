// Package state tracks the latest evaluation and the last action that was notified.
package state

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"AlertSentinel/internal/model"
	"AlertSentinel/internal/strategy"
)

// Tracker holds the latest evaluation result with concurrency safety.
// Results are last-write-wins by evaluation time, so a slow evaluation
// finishing late cannot overwrite a newer one.
type Tracker struct {
	mu       sync.Mutex
	state    *State
	latest   *strategy.Result
	filePath string
}

// NewTracker creates a Tracker, loading state from disk. An empty path keeps state in memory.
func NewTracker(filePath string) (*Tracker, error) {
	st := &State{}
	if filePath != "" {
		loaded, err := LoadState(filePath)
		if err != nil {
			return nil, fmt.Errorf("load state %s: %w", filePath, err)
		}
		st = loaded
	}
	return &Tracker{state: st, filePath: filePath}, nil
}

// Update stores res unless a newer result is already held. It reports whether res was kept.
func (t *Tracker) Update(res strategy.Result) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.latest != nil && res.EvaluatedAt.Before(t.latest.EvaluatedAt) {
		log.Debug().Time("evaluated_at", res.EvaluatedAt).Msg("discarding stale evaluation")
		return false
	}
	t.latest = &res
	t.state.LastEvaluatedAt = res.EvaluatedAt
	t.state.Evaluations++
	return true
}

// Latest returns the most recent result, if any.
func (t *Tracker) Latest() (strategy.Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest == nil {
		return strategy.Result{}, false
	}
	return *t.latest, true
}

// ShouldNotify reports whether la differs from the last notified action.
func (t *Tracker) ShouldNotify(la *model.LastAction) bool {
	if la == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.state.LastNotified
	return prev == nil || prev.Action != la.Action || prev.Ticker != la.Ticker || prev.Strategy != la.Strategy
}

// MarkNotified records la as delivered and persists the state.
func (t *Tracker) MarkNotified(la model.LastAction) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.LastNotified = &la
	t.state.Notifications++
	if err := t.save(); err != nil {
		log.Error().Err(err).Msg("failed to save state after notification")
	}
}

// GetState returns a copy of the persisted state.
func (t *Tracker) GetState() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.state
}

// Flush persists evaluation counters. Called on shutdown.
func (t *Tracker) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.save()
}

func (t *Tracker) save() error {
	if t.filePath == "" {
		return nil
	}
	return SaveState(t.filePath, t.state)
}
