package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sarbot/strategy"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.Equal(t, 100.0, cfg.StartBalance)
	assert.Equal(t, 15*time.Second, cfg.TickInterval.D())
	assert.Equal(t, strategy.ExitTrendReversal, cfg.ExitPolicy)
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sarbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
symbol: BTCUSDT
start_balance: 500
leverage: 3
tick_interval: 30s
exit_policy: trend-reversal-or-timeout
min_hold: 10m
max_hold: 1h
sar:
  accel_start: 0.01
journal:
  type: sqlite
  path: ./trades.db
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", cfg.Symbol)
	assert.Equal(t, 500.0, cfg.StartBalance)
	assert.Equal(t, 3.0, cfg.Leverage)
	assert.Equal(t, 30*time.Second, cfg.TickInterval.D())
	assert.Equal(t, strategy.ExitTrendReversalOrTimeout, cfg.ExitPolicy)
	assert.Equal(t, 0.01, cfg.SAR.AccelStart)
	assert.Equal(t, "sqlite", cfg.Journal.Type)

	// Untouched fields keep their defaults.
	assert.Equal(t, 0.0004, cfg.FeeRate)
	assert.Equal(t, 50, cfg.CandleLimit)
}

func TestLoadAppliesEnvCredentials(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "key")
	t.Setenv("BINANCE_SECRET", "secret")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "key", cfg.BinanceAPIKey)
	assert.Equal(t, "secret", cfg.BinanceAPISecret)
	assert.Equal(t, "tok", cfg.TelegramToken)
	assert.Equal(t, "42", cfg.TelegramChatID)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty symbol", func(c *Config) { c.Symbol = "" }},
		{"zero balance", func(c *Config) { c.StartBalance = 0 }},
		{"zero leverage", func(c *Config) { c.Leverage = 0 }},
		{"risk too high", func(c *Config) { c.RiskPercent = 1.5 }},
		{"negative fee", func(c *Config) { c.FeeRate = -0.1 }},
		{"bad policy", func(c *Config) { c.ExitPolicy = "stop-loss" }},
		{"hold range inverted", func(c *Config) {
			c.ExitPolicy = strategy.ExitTrendReversalOrTimeout
			c.MinHold = Duration(time.Hour)
			c.MaxHold = Duration(time.Minute)
		}},
		{"zero tick", func(c *Config) { c.TickInterval = 0 }},
		{"no state path", func(c *Config) { c.StatePath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbol: [unterminated"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
