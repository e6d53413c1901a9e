package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"AlertSentinel/internal/api"
	"AlertSentinel/internal/collector"
	"AlertSentinel/internal/config"
	"AlertSentinel/internal/logger"
	"AlertSentinel/internal/metrics"
	"AlertSentinel/internal/notifier"
	"AlertSentinel/internal/scheduler"
	"AlertSentinel/internal/state"
	"AlertSentinel/internal/store"
	"AlertSentinel/internal/summary"
)

var serveLegacy bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler, HTTP API and Telegram bot",
	Long: `Run the sentinel daemon. Alerts arrive on POST /api/alerts, strategies are
evaluated on the configured cron schedule and the last action is pushed to Telegram.

Examples:
  sentinel serve
  sentinel serve --config /etc/sentinel.yaml --legacy`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveLegacy, "legacy", false, "Use synchronized-data mode (missing alerts, threshold direction)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Init("sentinel", cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("config", cfgPath).Msg("AlertSentinel starting")

	st := openStore(cfg)
	defer st.Close()

	var src summary.Source = summary.NoopSource{}
	if cfg.Redis.Addr != "" {
		rc, err := summary.NewRedisClient(cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer rc.Close()
		src = summary.NewRedisSource(rc, cfg.Redis.SummaryKey)
		log.Info().Str("addr", cfg.Redis.Addr).Str("key", cfg.Redis.SummaryKey).Msg("score summary from redis")
	}

	tracker, err := state.NewTracker(cfg.State.File)
	if err != nil {
		return err
	}
	defer func() {
		if err := tracker.Flush(); err != nil {
			log.Error().Err(err).Msg("flush state")
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if prev, err := st.LatestEvaluation(ctx); err == nil {
		tracker.Update(*prev)
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Warn().Err(err).Msg("could not restore last evaluation")
	}

	rec := metrics.New(prometheus.DefaultRegisterer)
	eng := newEngine(cfg)
	col := collector.NewCollector(st, src, cfg.Alerts.MaxRecent, cfg.RetentionConfig())

	var (
		tn *notifier.TelegramNotifier
		n  notifier.Notifier
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Warn().Msg("telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, col, eng, st, tracker, n, rec)
	if serveLegacy {
		sched.Mode = scheduler.ModeLegacy
	}
	if err := sched.Register(cfg.Schedule.EvalCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	srv := api.NewServer(api.NewHandler(eng, col, st, tracker, rec), prometheus.DefaultGatherer, cfg.HTTP.Addr)
	srv.Start()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, evaluating now")
		go sched.RunNow(ctx)
	}

	log.Info().Msg("AlertSentinel is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("AlertSentinel stopped")
	return nil
}

// openStore falls back to memory when SQLite is not configured or cannot be opened.
func openStore(cfg *config.Config) store.Store {
	if cfg.Database.SQLitePath == "" {
		return store.NewMemoryStore()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
		log.Warn().Err(err).Msg("create database directory")
	}
	sq, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite store failed, using memory")
		return store.NewMemoryStore()
	}
	return sq
}
