package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"AlertSentinel/internal/model"
	"AlertSentinel/internal/strategy"
)

// SQLiteStore persists to a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			seq          INTEGER PRIMARY KEY AUTOINCREMENT,
			id           TEXT NOT NULL,
			received_at  INTEGER NOT NULL,
			time         TEXT,
			timestamp    TEXT,
			ticker       TEXT NOT NULL,
			timeframe    TEXT,
			indicator    TEXT NOT NULL,
			trigger_name TEXT NOT NULL,
			weight       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ticker ON alerts(ticker)`,

		`CREATE TABLE IF NOT EXISTS strategies (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT NOT NULL UNIQUE,
			name        TEXT NOT NULL,
			enabled     INTEGER NOT NULL,
			timeframe   INTEGER,
			threshold   REAL,
			rule_groups TEXT,
			rules       TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS timeframe_config (
			id             INTEGER PRIMARY KEY CHECK (id = 1),
			global_default INTEGER NOT NULL,
			overrides      TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS evaluations (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			evaluated_at INTEGER NOT NULL,
			row_count    INTEGER,
			action       TEXT,
			ticker       TEXT,
			strategy     TEXT,
			result       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_ts ON evaluations(evaluated_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveAlert(ctx context.Context, a model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO alerts
		(id, received_at, time, timestamp, ticker, timeframe, indicator, trigger_name, weight)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		a.ID, time.Now().Unix(), a.Time, a.Timestamp, a.Ticker, a.Timeframe,
		a.Indicator, a.Trigger, a.Weight,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, time, timestamp, ticker, timeframe, indicator, trigger_name, weight
		FROM alerts ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.ID, &a.Time, &a.Timestamp, &a.Ticker, &a.Timeframe, &a.Indicator, &a.Trigger, &a.Weight); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *SQLiteStore) SaveStrategy(ctx context.Context, st model.Strategy) (model.Strategy, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	groups, err := json.Marshal(st.RuleGroups)
	if err != nil {
		return st, fmt.Errorf("encode rule groups: %w", err)
	}
	rules, err := json.Marshal(st.Rules)
	if err != nil {
		return st, fmt.Errorf("encode rules: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `INSERT INTO strategies
		(id, name, enabled, timeframe, threshold, rule_groups, rules)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			enabled = excluded.enabled,
			timeframe = excluded.timeframe,
			threshold = excluded.threshold,
			rule_groups = excluded.rule_groups,
			rules = excluded.rules`,
		st.ID, st.Name, st.Enabled, st.Timeframe, st.Threshold, string(groups), string(rules),
	)
	if err != nil {
		return st, fmt.Errorf("upsert strategy %s: %w", st.ID, err)
	}
	return st, nil
}

func (s *SQLiteStore) Strategies(ctx context.Context) ([]model.Strategy, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, enabled, timeframe, threshold, rule_groups, rules
		FROM strategies ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query strategies: %w", err)
	}
	defer rows.Close()

	var out []model.Strategy
	for rows.Next() {
		var (
			st            model.Strategy
			groups, rules sql.NullString
		)
		if err := rows.Scan(&st.ID, &st.Name, &st.Enabled, &st.Timeframe, &st.Threshold, &groups, &rules); err != nil {
			return nil, fmt.Errorf("scan strategy: %w", err)
		}
		if err := decodeJSON(groups, &st.RuleGroups); err != nil {
			return nil, fmt.Errorf("strategy %s rule groups: %w", st.ID, err)
		}
		if err := decodeJSON(rules, &st.Rules); err != nil {
			return nil, fmt.Errorf("strategy %s rules: %w", st.ID, err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) TimeframeConfig(ctx context.Context) (*model.TimeframeConfig, error) {
	var (
		cfg       model.TimeframeConfig
		overrides sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT global_default, overrides FROM timeframe_config WHERE id = 1`).
		Scan(&cfg.GlobalDefault, &overrides)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query timeframe config: %w", err)
	}
	if err := decodeJSON(overrides, &cfg.Overrides); err != nil {
		return nil, fmt.Errorf("timeframe overrides: %w", err)
	}
	return &cfg, nil
}

func (s *SQLiteStore) SaveTimeframeConfig(ctx context.Context, cfg model.TimeframeConfig) error {
	overrides, err := json.Marshal(cfg.Overrides)
	if err != nil {
		return fmt.Errorf("encode overrides: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `INSERT INTO timeframe_config (id, global_default, overrides)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET global_default = excluded.global_default, overrides = excluded.overrides`,
		cfg.GlobalDefault, string(overrides),
	)
	if err != nil {
		return fmt.Errorf("save timeframe config: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordEvaluation(ctx context.Context, res strategy.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	var action, ticker, name string
	if la := res.LastAction; la != nil {
		action, ticker, name = string(la.Action), la.Ticker, la.Strategy
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `INSERT INTO evaluations
		(evaluated_at, row_count, action, ticker, strategy, result)
		VALUES (?,?,?,?,?,?)`,
		res.EvaluatedAt.Unix(), len(res.TickerData), action, ticker, name, string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LatestEvaluation(ctx context.Context) (*strategy.Result, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT result FROM evaluations ORDER BY id DESC LIMIT 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query evaluation: %w", err)
	}
	var res strategy.Result
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, fmt.Errorf("decode evaluation: %w", err)
	}
	return &res, nil
}

func (s *SQLiteStore) Close() error {
	log.Info().Msg("closing sqlite store")
	return s.db.Close()
}

func decodeJSON(col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}
