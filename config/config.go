// Package config loads the engine configuration from YAML with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sarbot/indicators"
	"sarbot/journal"
	"sarbot/strategy"
)

// Config is the complete engine configuration.
type Config struct {
	Symbol       string  `yaml:"symbol"`        // e.g. "ETHUSDT"
	StartBalance float64 `yaml:"start_balance"` // paper-trading bank
	Leverage     float64 `yaml:"leverage"`
	RiskPercent  float64 `yaml:"risk_percent"`   // fraction of available per trade
	MaxTradeSize float64 `yaml:"max_trade_size"` // cap on committed margin, quote units
	FeeRate      float64 `yaml:"fee_rate"`       // proportional fee per side

	SAR SARConfig `yaml:"sar"`

	ExitPolicy strategy.ExitPolicy `yaml:"exit_policy"`
	MinHold    Duration            `yaml:"min_hold"`
	MaxHold    Duration            `yaml:"max_hold"`

	CandleLimit  int      `yaml:"candle_limit"`
	TickInterval Duration `yaml:"tick_interval"`
	PriceBackoff Duration `yaml:"price_backoff"` // wait after a missing price
	ErrorBackoff Duration `yaml:"error_backoff"` // wait after a tick error

	StatePath string         `yaml:"state_path"`
	Journal   journal.Config `yaml:"journal"`

	UseStream bool `yaml:"use_stream"` // websocket mark-price stream

	BinanceAPIKey    string `yaml:"-"`
	BinanceAPISecret string `yaml:"-"`
	TelegramToken    string `yaml:"-"`
	TelegramChatID   string `yaml:"-"`
}

// SARConfig mirrors indicators.SARConfig in YAML form.
type SARConfig struct {
	AccelStart float64 `yaml:"accel_start"`
	AccelStep  float64 `yaml:"accel_step"`
	AccelMax   float64 `yaml:"accel_max"`
}

// Indicator converts to the indicator package's config type.
func (c SARConfig) Indicator() indicators.SARConfig {
	return indicators.SARConfig{
		AccelStart: c.AccelStart,
		AccelStep:  c.AccelStep,
		AccelMax:   c.AccelMax,
	}
}

// Duration accepts "30s"/"5m" strings in YAML, which time.Duration
// itself does not.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		dur, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("config: bad duration %q: %w", s, err)
		}
		*d = Duration(dur)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("config: bad duration %v", value.Value)
	}
	*d = Duration(n)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) D() time.Duration { return time.Duration(d) }

// Default returns the stock production configuration.
func Default() Config {
	return Config{
		Symbol:       "ETHUSDT",
		StartBalance: 100.0,
		Leverage:     5,
		RiskPercent:  0.01,
		MaxTradeSize: 20.0, // 20% of the start bank
		FeeRate:      0.0004,
		SAR:          SARConfig{AccelStart: 0.02, AccelStep: 0.02, AccelMax: 0.2},
		ExitPolicy:   strategy.ExitTrendReversal,
		MinHold:      Duration(30 * time.Minute),
		MaxHold:      Duration(2 * time.Hour),
		CandleLimit:  50,
		TickInterval: Duration(15 * time.Second),
		PriceBackoff: Duration(10 * time.Second),
		ErrorBackoff: Duration(30 * time.Second),
		StatePath:    "state/bot_state.json",
	}
}

// Load reads path (optional) over the defaults, then applies environment
// overrides for credentials.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.BinanceAPIKey = os.Getenv("BINANCE_API_KEY")
	cfg.BinanceAPISecret = os.Getenv("BINANCE_SECRET")
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("config: symbol is required")
	}
	if c.StartBalance <= 0 {
		return fmt.Errorf("config: start_balance must be positive")
	}
	if c.Leverage <= 0 {
		return fmt.Errorf("config: leverage must be positive")
	}
	if c.RiskPercent <= 0 || c.RiskPercent > 1 {
		return fmt.Errorf("config: risk_percent must be in (0, 1]")
	}
	if c.FeeRate < 0 || c.FeeRate >= 1 {
		return fmt.Errorf("config: fee_rate must be in [0, 1)")
	}
	if !c.ExitPolicy.Valid() {
		return fmt.Errorf("config: unknown exit_policy %q", c.ExitPolicy)
	}
	if c.ExitPolicy == strategy.ExitTrendReversalOrTimeout && c.MaxHold < c.MinHold {
		return fmt.Errorf("config: max_hold must be >= min_hold")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("config: tick_interval must be positive")
	}
	if c.StatePath == "" {
		return fmt.Errorf("config: state_path is required")
	}
	return nil
}
