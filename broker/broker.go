// Package broker defines the market data surface the engine consumes.
// Implementations live in subpackages; the engine never talks to an
// exchange directly.
package broker

import (
	"context"

	"sarbot/market"
)

// MarketData supplies recent candle history per timeframe and the last
// traded price. Implementations may fail or return stale data; callers
// treat both as a skipped tick, never as fatal.
type MarketData interface {
	// Candles returns up to limit most recent closed candles for the
	// timeframe, ascending by time.
	Candles(ctx context.Context, timeframe string, limit int) ([]market.Candle, error)

	// LastPrice returns the most recent traded price for the instrument.
	LastPrice(ctx context.Context) (float64, error)
}
