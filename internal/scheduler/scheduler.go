package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"AlertSentinel/internal/collector"
	"AlertSentinel/internal/metrics"
	"AlertSentinel/internal/notifier"
	"AlertSentinel/internal/state"
	"AlertSentinel/internal/store"
	"AlertSentinel/internal/strategy"
	"AlertSentinel/internal/window"
)

const (
	ModeLive   = "live"
	ModeLegacy = "legacy"
)

// Scheduler runs evaluations on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Engine    *strategy.Engine
	Store     store.Store
	Tracker   *state.Tracker
	// Notifier may be nil when Telegram is not configured.
	Notifier notifier.Notifier
	Metrics  *metrics.Recorder
	Mode     string
	Ctx      context.Context
	Now      func() time.Time
}

// NewScheduler creates a new Scheduler. Overlapping ticks are skipped.
func NewScheduler(ctx context.Context, col *collector.Collector, eng *strategy.Engine, st store.Store,
	tr *state.Tracker, n notifier.Notifier, rec *metrics.Recorder) *Scheduler {
	l := log.With().Str("component", "cron").Logger()
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(&l)))),
		Collector: col,
		Engine:    eng,
		Store:     st,
		Tracker:   tr,
		Notifier:  n,
		Metrics:   rec,
		Mode:      ModeLive,
		Ctx:       ctx,
		Now:       time.Now,
	}
}

// Register schedules the evaluation task.
func (s *Scheduler) Register(evalCron string) error {
	if _, err := s.Cron.AddFunc(evalCron, s.evalTask); err != nil {
		return fmt.Errorf("register eval task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Str("mode", s.Mode).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running evaluation to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) evalTask() {
	if _, err := s.RunNow(s.Ctx); err != nil {
		log.Error().Err(err).Msg("evaluation failed")
	}
}

// RunNow collects a snapshot, evaluates it and publishes the outcome.
func (s *Scheduler) RunNow(ctx context.Context) (strategy.Result, error) {
	start := time.Now()
	snap, err := s.Collector.Collect(ctx)
	if err != nil {
		s.Metrics.RecordError("collect")
		return strategy.Result{}, fmt.Errorf("collect: %w", err)
	}

	now := s.Now()
	var res strategy.Result
	if s.Mode == ModeLegacy {
		res = s.Engine.Synchronize(snap, now)
	} else {
		res = s.Engine.Evaluate(snap, now)
	}
	s.Metrics.RecordEvaluation(s.Mode, res, time.Since(start))
	s.Metrics.RecordAlertStates(window.NewFilter(snap.Timeframes), snap.Alerts, now)

	if !s.Tracker.Update(res) {
		return res, nil
	}
	if err := s.Store.RecordEvaluation(ctx, res); err != nil {
		s.Metrics.RecordError("record")
		log.Error().Err(err).Msg("record evaluation")
	}

	ev := log.Info().Int("rows", len(res.TickerData))
	if la := res.LastAction; la != nil {
		ev = ev.Str("action", string(la.Action)).Str("ticker", la.Ticker).Str("strategy", la.Strategy)
	}
	ev.Msg("evaluation complete")

	s.notify(ctx, res)
	return res, nil
}

func (s *Scheduler) notify(ctx context.Context, res strategy.Result) {
	if s.Notifier == nil || !s.Tracker.ShouldNotify(res.LastAction) {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, notifier.FormatLastAction(res.LastAction, res.EvaluatedAt), 3); err != nil {
		s.Metrics.RecordError("notify")
		log.Error().Err(err).Msg("send notification")
		return
	}
	s.Tracker.MarkNotified(*res.LastAction)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	var cmd string
	if fields := strings.Fields(command); len(fields) > 0 {
		cmd = strings.ToLower(fields[0])
	}
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	switch cmd {
	case "/scores":
		res, ok := s.Tracker.Latest()
		if !ok {
			return "No evaluation yet."
		}
		return notifier.FormatScores(res)
	case "/last":
		res, ok := s.Tracker.Latest()
		if !ok {
			return "No evaluation yet."
		}
		return notifier.FormatLastAction(res.LastAction, res.EvaluatedAt)
	case "/alerts":
		snap, err := s.Collector.Collect(ctx)
		if err != nil {
			log.Error().Err(err).Msg("collect for /alerts")
			return fmt.Sprintf("❌ Failed to load alerts: %v", err)
		}
		now := s.Now()
		f := window.NewFilter(snap.Timeframes)
		return notifier.FormatAlertGroups(s.Engine.Groups(snap, now, true), f, now)
	case "/eval":
		res, err := s.RunNow(ctx)
		if err != nil {
			return fmt.Sprintf("❌ Evaluation failed: %v", err)
		}
		return notifier.FormatScores(res)
	default:
		return "Available commands:\n• /scores - latest score table\n• /last - last action\n• /alerts - active alerts\n• /eval - evaluate now"
	}
}
