package engine

import (
	"context"

	"sarbot/indicators"
	"sarbot/ledger"
	"sarbot/market"
)

// Status is the control-surface view of the engine. PriceStale marks
// the price as unavailable rather than failing the whole query.
type Status struct {
	Running      bool                 `json:"running"`
	InPosition   bool                 `json:"in_position"`
	Position     *ledger.Position     `json:"position"`
	Balance      float64              `json:"balance"`
	Available    float64              `json:"available"`
	CurrentPrice float64              `json:"current_price"`
	PriceStale   bool                 `json:"price_stale"`
	Directions   map[string]string    `json:"directions"`
	Trades       []ledger.TradeRecord `json:"trades"`
}

// Status reports the last known state. It never blocks on network I/O.
func (e *Engine) Status() Status {
	e.mu.Lock()
	running := e.running
	price := e.lastPrice
	fresh := e.priceFresh
	dirs := e.dirs
	e.mu.Unlock()

	st := e.led.Snapshot()
	return Status{
		Running:      running,
		InPosition:   st.InPosition,
		Position:     st.Position,
		Balance:      st.Balance,
		Available:    st.Available,
		CurrentPrice: price,
		PriceStale:   !fresh,
		Directions: map[string]string{
			market.TimeframeShort: dirs.Short.String(),
			market.TimeframeMid:   dirs.Mid.String(),
			market.TimeframeLong:  dirs.Long.String(),
		},
		Trades: st.Trades,
	}
}

// CloseManually closes the open position at the best known price. It
// prefers a live price and falls back to the last tick's.
func (e *Engine) CloseManually(ctx context.Context, reason string) (ledger.TradeRecord, error) {
	price, err := e.md.LastPrice(ctx)
	if err != nil {
		e.mu.Lock()
		price, err = e.lastPrice, nil
		if !e.priceFresh {
			err = ErrPriceUnknown
		}
		e.mu.Unlock()
		if err != nil {
			return ledger.TradeRecord{}, err
		}
	}

	e.decMu.Lock()
	defer e.decMu.Unlock()

	rec, err := e.led.Close(price, reason, e.now())
	if err != nil {
		return ledger.TradeRecord{}, err
	}
	e.fus.NoteExit()
	return rec, nil
}

// ResetBalance restores the account to a fresh state with the given
// balance; zero resets to the configured start bank.
func (e *Engine) ResetBalance(balance float64) {
	if balance <= 0 {
		balance = e.cfg.ResetBalance
	}
	e.decMu.Lock()
	e.fus.NoteExit()
	e.decMu.Unlock()
	e.led.Reset(balance)
}

// TimeframeDebug is one timeframe's indicator view for diagnostics.
type TimeframeDebug struct {
	Direction string  `json:"direction"`
	Close     float64 `json:"close"`
	SAR       float64 `json:"sar"`
}

// Debug recomputes the indicator per timeframe on demand. Timeframes
// without enough data are omitted.
func (e *Engine) Debug(ctx context.Context) map[string]TimeframeDebug {
	out := make(map[string]TimeframeDebug)
	for _, tf := range market.Timeframes() {
		candles, err := e.md.Candles(ctx, tf, e.cfg.CandleLimit)
		if err != nil || len(candles) == 0 {
			continue
		}
		series, err := indicators.SAR(candles, e.cfg.SAR)
		if err != nil {
			continue
		}
		out[tf] = TimeframeDebug{
			Direction: indicators.Trend(candles, e.cfg.SAR).String(),
			Close:     candles[len(candles)-1].Close,
			SAR:       series[len(series)-1],
		}
	}
	return out
}
