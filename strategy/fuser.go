// Package strategy fuses per-timeframe trend directions into entry and
// exit decisions.
package strategy

import (
	"fmt"
	"math/rand"
	"time"

	"sarbot/market"
)

// ExitPolicy selects how positions are closed.
type ExitPolicy string

const (
	// ExitTrendReversal closes only when the mid timeframe flips against
	// the position. No profit target, no stop loss.
	ExitTrendReversal ExitPolicy = "trend-reversal"

	// ExitTrendReversalOrTimeout additionally closes after a randomized
	// maximum hold duration chosen at entry.
	ExitTrendReversalOrTimeout ExitPolicy = "trend-reversal-or-timeout"
)

// Valid reports whether p names a known policy.
func (p ExitPolicy) Valid() bool {
	return p == ExitTrendReversal || p == ExitTrendReversalOrTimeout
}

// Close reasons recorded on trades.
const (
	ReasonReversal = "sar_reversal_5m"
	ReasonTimeout  = "max_hold_timeout"
	ReasonManual   = "manual"
)

// Config parameterizes the fuser. MinHold/MaxHold bound the randomized
// hold timer and only apply to the timeout policy.
type Config struct {
	Policy  ExitPolicy
	MinHold time.Duration
	MaxHold time.Duration
}

// Directions carries one tick's trend classification per timeframe.
// Long timeframe is advisory only and never gates a decision.
type Directions struct {
	Short market.Direction // 1m
	Mid   market.Direction // 5m
	Long  market.Direction // 15m
}

func (d Directions) String() string {
	return fmt.Sprintf("1m:%s 5m:%s 15m:%s", d.Short, d.Mid, d.Long)
}

// Decision is the outcome of one evaluation. At most one of Enter and
// Exit is set; exit strictly wins while a position is open.
type Decision struct {
	Enter  market.Direction // Unknown means no entry
	Exit   bool
	Reason string
}

// Fuser combines per-timeframe directions with position context. It
// carries only decision-local state (the hold deadline and the last
// short-timeframe direction); the persisted hysteresis flag lives in
// the ledger.
type Fuser struct {
	cfg Config
	rng *rand.Rand

	deadline  time.Time // zero while flat or under pure reversal policy
	lastShort market.Direction
}

// New creates a fuser. An unset policy defaults to trend reversal.
func New(cfg Config) *Fuser {
	if cfg.Policy == "" {
		cfg.Policy = ExitTrendReversal
	}
	return &Fuser{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Evaluate produces the decision for one tick. skip is the consumed
// hysteresis flag: when set, entry consideration is suppressed for
// exactly this evaluation.
func (f *Fuser) Evaluate(d Directions, side market.Direction, inPosition, skip bool, now time.Time) Decision {
	f.lastShort = d.Short

	if inPosition {
		if d.Mid.Defined() && d.Mid != side {
			return Decision{Exit: true, Reason: ReasonReversal}
		}
		if f.cfg.Policy == ExitTrendReversalOrTimeout && !f.deadline.IsZero() && now.After(f.deadline) {
			return Decision{Exit: true, Reason: ReasonTimeout}
		}
		return Decision{}
	}

	if skip {
		return Decision{}
	}
	if d.Short.Defined() && d.Short == d.Mid {
		return Decision{Enter: d.Short}
	}
	return Decision{}
}

// NoteEntry arms the randomized hold deadline for the timeout policy.
// Call it once after a position has actually been opened.
func (f *Fuser) NoteEntry(now time.Time) {
	if f.cfg.Policy != ExitTrendReversalOrTimeout {
		return
	}
	hold := f.cfg.MinHold
	if span := f.cfg.MaxHold - f.cfg.MinHold; span > 0 {
		hold += time.Duration(f.rng.Int63n(int64(span)))
	}
	f.deadline = now.Add(hold)
}

// NoteExit clears the hold deadline.
func (f *Fuser) NoteExit() {
	f.deadline = time.Time{}
}

// LastShort returns the short-timeframe direction seen on the most
// recent evaluation.
func (f *Fuser) LastShort() market.Direction {
	return f.lastShort
}
