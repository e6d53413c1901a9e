package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"AlertSentinel/internal/model"
)

var validate = validator.New()

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
	} `yaml:"log"`
	HTTP struct {
		Addr string `yaml:"addr" default:":8080"`
	} `yaml:"http"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Schedule struct {
		EvalCron string `yaml:"eval_cron" default:"*/30 * * * * *" validate:"required"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/alert_sentinel.db"`
	} `yaml:"database"`
	Redis struct {
		Addr       string `yaml:"addr"`
		SummaryKey string `yaml:"summary_key" default:"alerts:score_summary"`
	} `yaml:"redis"`
	Alerts struct {
		MaxRecent  int                   `yaml:"max_recent" default:"50" validate:"gt=0"`
		Timeframes model.TimeframeConfig `yaml:"timeframes"`
	} `yaml:"alerts"`
	State struct {
		File string `yaml:"file" default:"data/sentinel_state.json"`
	} `yaml:"state"`
	// Indicators adds code → display name mappings on top of the built-in suite.
	Indicators map[string]string `yaml:"indicators"`
	Proxy      string            `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("EVAL_CRON"); v != "" {
		cfg.Schedule.EvalCron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
}

// Validate checks field constraints and that the evaluation schedule parses.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s failed validation: %s", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	if _, err := cron.NewParser(cronSpec).Parse(c.Schedule.EvalCron); err != nil {
		return fmt.Errorf("schedule.eval_cron: %w", err)
	}
	return nil
}

// cronSpec matches the scheduler: a leading seconds field plus descriptors.
const cronSpec = cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor

// TelegramEnabled reports whether notifications and command polling are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// RetentionConfig returns the static alert window config, or nil when none is set.
func (c *Config) RetentionConfig() *model.TimeframeConfig {
	tf := c.Alerts.Timeframes
	if tf.GlobalDefault == 0 && len(tf.Overrides) == 0 {
		return nil
	}
	return &tf
}
