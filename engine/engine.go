// Package engine runs the polling strategy loop and exposes the control
// surface consumed by an external dashboard layer.
package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"sarbot/broker"
	"sarbot/indicators"
	"sarbot/ledger"
	"sarbot/market"
	"sarbot/strategy"
)

var (
	ErrAlreadyRunning = errors.New("engine: already running")
	ErrNotRunning     = errors.New("engine: not running")
	ErrPriceUnknown   = errors.New("engine: current price unavailable")
)

// Config carries the scheduler's timing and indicator parameters.
type Config struct {
	SAR          indicators.SARConfig
	CandleLimit  int
	TickInterval time.Duration
	PriceBackoff time.Duration // wait after a missing price
	ErrorBackoff time.Duration // wait after an unexpected tick failure
	ResetBalance float64       // balance restored by ResetBalance()
}

// Engine owns the run/stop lifecycle. One background loop polls market
// data and drives the ledger; control-surface calls arrive on other
// goroutines and go through the same ledger synchronization.
type Engine struct {
	cfg Config
	md  broker.MarketData
	led *ledger.Ledger
	fus *strategy.Fuser
	now func() time.Time

	mu         sync.Mutex // lifecycle and last observed market view
	running    bool
	cancel     context.CancelFunc
	done       chan struct{}
	lastPrice  float64
	priceFresh bool
	dirs       strategy.Directions

	decMu sync.Mutex // serializes fuser access between loop and manual close
}

func New(cfg Config, md broker.MarketData, led *ledger.Ledger, fus *strategy.Fuser) *Engine {
	if cfg.CandleLimit <= 0 {
		cfg.CandleLimit = 50
	}
	return &Engine{
		cfg: cfg,
		md:  md,
		led: led,
		fus: fus,
		now: time.Now,
	}
}

// Start spawns the polling loop. It fails with ErrAlreadyRunning when
// the loop is live.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.running = true
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.loop(ctx, e.done)
	log.Printf("engine | started")
	return nil
}

// Stop requests the loop to exit at the next safe point and waits for
// it to finish the current tick.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotRunning
	}
	cancel, done := e.cancel, e.done
	e.mu.Unlock()

	cancel()
	<-done

	e.mu.Lock()
	e.running = false
	e.priceFresh = false
	e.mu.Unlock()
	log.Printf("engine | stopped")
	return nil
}

// Running reports the scheduler state.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		wait := e.tick(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// tick executes one decision cycle and returns how long to wait before
// the next. All failures are local to the tick; the loop never dies.
func (e *Engine) tick(ctx context.Context) (wait time.Duration) {
	wait = e.cfg.TickInterval
	defer func() {
		if r := recover(); r != nil {
			log.Printf("engine | recovered from tick panic: %v", r)
			wait = e.cfg.ErrorBackoff
		}
	}()

	dirs := e.directions(ctx)

	price, err := e.md.LastPrice(ctx)
	if err != nil {
		log.Printf("engine | could not fetch current price: %v, skipping tick", err)
		e.mu.Lock()
		e.priceFresh = false
		e.dirs = dirs
		e.mu.Unlock()
		return e.cfg.PriceBackoff
	}

	e.mu.Lock()
	e.lastPrice = price
	e.priceFresh = true
	e.dirs = dirs
	e.mu.Unlock()

	side, inPos := e.led.InPosition()
	if !inPos {
		log.Printf("engine | price %.2f | %s | balance %.2f", price, dirs, e.led.Snapshot().Balance)
	}

	skip := false
	if !inPos {
		if skip = e.led.ConsumeSkipNext(); skip {
			log.Printf("engine | skipping signal due to recent exit")
		}
	}

	e.decMu.Lock()
	defer e.decMu.Unlock()

	now := e.now()
	dec := e.fus.Evaluate(dirs, side, inPos, skip, now)
	switch {
	case dec.Exit:
		if _, err := e.led.Close(price, dec.Reason, now); err != nil {
			log.Printf("engine | close skipped: %v", err)
		} else {
			e.fus.NoteExit()
		}
	case dec.Enter.Defined():
		if _, err := e.led.Open(dec.Enter, price, now); err != nil {
			log.Printf("engine | open skipped: %v", err)
		} else {
			e.fus.NoteEntry(now)
		}
	}
	return wait
}

// directions classifies the trend per timeframe. A failed or short fetch
// yields Unknown for that timeframe only.
func (e *Engine) directions(ctx context.Context) strategy.Directions {
	var dirs strategy.Directions
	for _, tf := range market.Timeframes() {
		candles, err := e.md.Candles(ctx, tf, e.cfg.CandleLimit)
		if err != nil {
			log.Printf("engine | fetch %s candles: %v", tf, err)
			continue
		}
		dir := indicators.Trend(candles, e.cfg.SAR)
		switch tf {
		case market.TimeframeShort:
			dirs.Short = dir
		case market.TimeframeMid:
			dirs.Mid = dir
		case market.TimeframeLong:
			dirs.Long = dir
		}
	}
	return dirs
}
