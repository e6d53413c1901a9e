package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 50, cfg.Alerts.MaxRecent)
	assert.Equal(t, "*/30 * * * * *", cfg.Schedule.EvalCron)
	assert.Nil(t, cfg.RetentionConfig())
	assert.False(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
telegram:
  bot_token: file-token
  chat_id: "42"
alerts:
  max_recent: 20
  timeframes:
    global_default: 60
    overrides:
      "15": 15
indicators:
  custom_osc: Custom Oscillator
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 20, cfg.Alerts.MaxRecent)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, "Custom Oscillator", cfg.Indicators["custom_osc"])

	rc := cfg.RetentionConfig()
	require.NotNil(t, rc)
	assert.Equal(t, 60, rc.GlobalDefault)
	assert.Equal(t, 15, rc.Overrides["15"])
}

func TestLoad_ParseError(t *testing.T) {
	_, err := Load(writeConfig(t, "log: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad cron", func(c *Config) { c.Schedule.EvalCron = "every minute" }, true},
		{"five field cron", func(c *Config) { c.Schedule.EvalCron = "*/5 * * * *" }, true},
		{"descriptor", func(c *Config) { c.Schedule.EvalCron = "@every 1m" }, false},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "t" }, true},
		{"negative window", func(c *Config) { c.Alerts.Timeframes.GlobalDefault = -1 }, true},
		{"negative override", func(c *Config) { c.Alerts.Timeframes.Overrides = map[string]int{"15m": -5} }, true},
		{"zero override", func(c *Config) { c.Alerts.Timeframes.Overrides = map[string]int{"15m": 0} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
