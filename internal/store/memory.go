package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"AlertSentinel/internal/model"
	"AlertSentinel/internal/strategy"
)

// MemoryStore keeps everything in process memory. It is used when no
// SQLite path is configured and in tests.
type MemoryStore struct {
	mu          sync.RWMutex
	alerts      []model.Alert
	strategies  []model.Strategy
	timeframes  *model.TimeframeConfig
	evaluations []strategy.Result
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) SaveAlert(_ context.Context, a model.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, a)
	return nil
}

func (m *MemoryStore) RecentAlerts(_ context.Context, limit int) ([]model.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		return nil, nil
	}
	out := make([]model.Alert, 0, min(limit, len(m.alerts)))
	for i := len(m.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.alerts[i])
	}
	return out, nil
}

func (m *MemoryStore) SaveStrategy(_ context.Context, s model.Strategy) (model.Strategy, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.strategies {
		if m.strategies[i].ID == s.ID {
			m.strategies[i] = s
			return s, nil
		}
	}
	m.strategies = append(m.strategies, s)
	return s, nil
}

func (m *MemoryStore) Strategies(_ context.Context) ([]model.Strategy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Strategy(nil), m.strategies...), nil
}

func (m *MemoryStore) TimeframeConfig(_ context.Context) (*model.TimeframeConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.timeframes == nil {
		return nil, ErrNotFound
	}
	cfg := *m.timeframes
	return &cfg, nil
}

func (m *MemoryStore) SaveTimeframeConfig(_ context.Context, cfg model.TimeframeConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeframes = &cfg
	return nil
}

func (m *MemoryStore) RecordEvaluation(_ context.Context, res strategy.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluations = append(m.evaluations, res)
	return nil
}

func (m *MemoryStore) LatestEvaluation(_ context.Context) (*strategy.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.evaluations) == 0 {
		return nil, ErrNotFound
	}
	res := m.evaluations[len(m.evaluations)-1]
	return &res, nil
}

func (m *MemoryStore) Close() error { return nil }
