package ledger

import (
	"errors"
	"log"
	"sync"
	"time"

	"sarbot/market"
	"sarbot/pkg/id"
)

var (
	// ErrAlreadyInPosition rejects a second open while one position lives.
	ErrAlreadyInPosition = errors.New("ledger: position already open")
	// ErrNoPosition rejects a close while flat.
	ErrNoPosition = errors.New("ledger: no open position")
	// ErrNoUsableMargin rejects an open whose post-fee margin is zero.
	ErrNoUsableMargin = errors.New("ledger: no usable margin")
)

// Config are the sizing and fee constants. All rates are fractions
// (0.0004 = 0.04%).
type Config struct {
	Leverage     float64
	RiskPercent  float64 // fraction of available balance risked per trade
	MaxTradeSize float64 // cap on committed margin, quote units
	FeeRate      float64 // proportional fee, applied on entry margin and exit notional
}

// Store persists the full account snapshot. Implementations must replace
// any prior snapshot atomically.
type Store interface {
	Save(AccountState) error
}

// TradeWriter receives every closed trade. Implementations append to a
// durable journal; failures are logged here, never propagated.
type TradeWriter interface {
	RecordTrade(TradeRecord) error
}

// Sink is notified after opens and closes. A nil Sink is a no-op.
type Sink interface {
	OnOpen(Position, float64)
	OnClose(TradeRecord, float64, float64)
}

// Ledger guards AccountState behind one mutex. The scheduler and the
// control surface both operate through it concurrently.
type Ledger struct {
	mu      sync.Mutex
	cfg     Config
	state   AccountState
	store   Store
	journal TradeWriter
	sink    Sink
}

// New builds a ledger over the given state. store, journal, and sink may
// each be nil.
func New(cfg Config, state AccountState, store Store, journal TradeWriter, sink Sink) *Ledger {
	// Repair a snapshot whose counter fell behind its history (older
	// deployments persisted the counter separately).
	if n := int64(len(state.Trades)); state.TradeSeq < n {
		log.Printf("ledger | trade counter %d behind history %d, repairing", state.TradeSeq, n)
		state.TradeSeq = n
	}
	return &Ledger{cfg: cfg, state: state, store: store, journal: journal, sink: sink}
}

// Open creates the single position at the given price. It fails with
// ErrAlreadyInPosition while a position lives and with ErrNoUsableMargin
// when sizing leaves nothing to commit; both are warnings for the
// caller, not faults.
func (l *Ledger) Open(side market.Direction, price float64, now time.Time) (Position, error) {
	if !side.Defined() {
		return Position{}, errors.New("ledger: side must be long or short")
	}
	if price <= 0 {
		return Position{}, errors.New("ledger: price must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.InPosition {
		return Position{}, ErrAlreadyInPosition
	}

	margin := l.state.Available * l.cfg.RiskPercent * l.cfg.Leverage
	if margin > l.cfg.MaxTradeSize {
		margin = l.cfg.MaxTradeSize
	}
	if margin > l.state.Available {
		margin = l.state.Available
	}
	if margin <= 0 {
		return Position{}, ErrNoUsableMargin
	}

	// Size is computed on the pre-fee margin; the entry fee comes out of
	// the committed amount.
	size := margin / price
	margin -= margin * l.cfg.FeeRate
	if margin <= 0 {
		return Position{}, ErrNoUsableMargin
	}

	l.state.TradeSeq++
	pos := Position{
		Seq:        l.state.TradeSeq,
		Side:       side,
		EntryPrice: price,
		EntryTime:  now.UTC(),
		Size:       size,
		Margin:     margin,
		Leverage:   l.cfg.Leverage,
	}
	l.state.InPosition = true
	l.state.Position = &pos
	l.state.Available -= margin

	log.Printf("ledger | opened %s #%d: %.4f units @ %.2f, margin %.2f",
		side, pos.Seq, pos.Size, price, pos.Margin)

	if l.sink != nil {
		l.sink.OnOpen(pos, l.state.Balance)
	}
	l.persistLocked()
	return pos, nil
}

// Close realizes the open position at the given price and appends a
// TradeRecord. Closing always arms the one-shot hysteresis flag so the
// next entry evaluation is suppressed.
func (l *Ledger) Close(price float64, reason string, now time.Time) (TradeRecord, error) {
	if price <= 0 {
		return TradeRecord{}, errors.New("ledger: price must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.state.InPosition || l.state.Position == nil {
		return TradeRecord{}, ErrNoPosition
	}
	pos := *l.state.Position

	pnl := pos.Size * (price - pos.EntryPrice) * pos.Leverage
	if pos.Side == market.Short {
		pnl = -pnl
	}
	pnl -= pos.Size * price * l.cfg.FeeRate

	pct := 0.0
	if pos.Margin > 0 {
		pct = pnl / pos.Margin * 100
	}

	newBalance := l.state.Balance + pnl
	rec := TradeRecord{
		ID:         id.New(),
		Seq:        pos.Seq,
		Side:       pos.Side,
		EntryPrice: pos.EntryPrice,
		EntryTime:  pos.EntryTime,
		ExitPrice:  price,
		ExitTime:   now.UTC(),
		PnL:        pnl,
		PnLPercent: pct,
		Reason:     reason,
		Balance:    newBalance,
	}

	l.state.Trades = append(l.state.Trades, rec)
	l.state.Balance = newBalance
	l.state.Available = newBalance
	l.state.InPosition = false
	l.state.Position = nil
	l.state.SkipNextSignal = true

	log.Printf("ledger | closed %s #%d @ %.2f: pnl %.2f (%.2f%%), balance %.2f, reason %s",
		rec.Side, rec.Seq, price, pnl, pct, newBalance, reason)

	if l.sink != nil {
		l.sink.OnClose(rec, price, newBalance)
	}
	if l.journal != nil {
		if err := l.journal.RecordTrade(rec); err != nil {
			log.Printf("ledger | journal write failed: %v", err)
		}
	}
	l.persistLocked()
	return rec, nil
}

// Reset restores the account to a fresh state with the given balance,
// dropping the position, the history, and the hysteresis flag.
func (l *Ledger) Reset(balance float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = DefaultState(balance)
	log.Printf("ledger | account reset, balance %.2f", balance)
	l.persistLocked()
}

// SetSkipNext overrides the hysteresis flag. Close arms it on every
// exit; this exists for explicit control and tests.
func (l *Ledger) SetSkipNext(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.SkipNextSignal == v {
		return
	}
	l.state.SkipNextSignal = v
	l.persistLocked()
}

// ConsumeSkipNext clears and reports the hysteresis flag. The flag
// suppresses exactly one entry evaluation after an exit.
func (l *Ledger) ConsumeSkipNext() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.state.SkipNextSignal {
		return false
	}
	l.state.SkipNextSignal = false
	l.persistLocked()
	return true
}

// InPosition reports whether a position is live, and its side.
func (l *Ledger) InPosition() (market.Direction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.state.InPosition || l.state.Position == nil {
		return market.Unknown, false
	}
	return l.state.Position.Side, true
}

// Snapshot returns a deep copy of the account state.
func (l *Ledger) Snapshot() AccountState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone()
}

// persistLocked writes the snapshot through the store. Callers hold the
// mutex. A failed write degrades crash recovery but never stops trading.
func (l *Ledger) persistLocked() {
	if l.store == nil {
		return
	}
	if err := l.store.Save(l.state.clone()); err != nil {
		log.Printf("ledger | snapshot write failed: %v", err)
	}
}
