package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"AlertSentinel/internal/config"
	"AlertSentinel/internal/indicator"
	"AlertSentinel/internal/strategy"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "sentinel",
	Short:         "Alert strategy matching engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	def := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		def = v
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", def, "Path to the YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("sentinel failed")
	}
}

// newEngine builds the engine with configured indicator names and alert cap.
func newEngine(cfg *config.Config) *strategy.Engine {
	return strategy.NewEngine(
		strategy.WithIndicators(indicator.DefaultMapper().With(cfg.Indicators)),
		strategy.WithMaxAlerts(cfg.Alerts.MaxRecent),
	)
}
