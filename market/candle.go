// Package market holds the shared market data types: candles, trend
// directions, and timeframe helpers.
package market

import (
	"errors"
	"time"
)

// Candle represents one OHLCV bar. Producers emit candles in ascending
// time order; consumers treat them as read-only.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Validate checks that the candle is internally consistent.
func (c Candle) Validate() error {
	if c.Timestamp.IsZero() {
		return errors.New("candle timestamp is zero")
	}
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		return errors.New("candle prices must be positive")
	}
	if c.High < c.Low {
		return errors.New("candle high cannot be less than low")
	}
	if c.Open < c.Low || c.Open > c.High {
		return errors.New("candle open must be between low and high")
	}
	if c.Close < c.Low || c.Close > c.High {
		return errors.New("candle close must be between low and high")
	}
	if c.Volume < 0 {
		return errors.New("candle volume cannot be negative")
	}
	return nil
}
