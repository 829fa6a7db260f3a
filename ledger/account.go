// Package ledger owns the simulated account: the single position slot,
// the balance, and the closed-trade history. Every read and write of
// account state goes through the Ledger's mutex; nothing else in the
// repository touches these fields directly.
package ledger

import (
	"time"

	"sarbot/market"
)

// Position is the one live trade. It exists exactly while
// AccountState.InPosition is true.
type Position struct {
	Seq        int64            `json:"seq"`
	Side       market.Direction `json:"side"`
	EntryPrice float64          `json:"entry_price"`
	EntryTime  time.Time        `json:"entry_time"`
	Size       float64          `json:"size"`     // base asset units
	Margin     float64          `json:"margin"`   // quote units committed, net of entry fee
	Leverage   float64          `json:"leverage"`
}

// TradeRecord is the immutable history entry appended on every close.
type TradeRecord struct {
	ID         string           `json:"id"`
	Seq        int64            `json:"seq"`
	Side       market.Direction `json:"side"`
	EntryPrice float64          `json:"entry_price"`
	EntryTime  time.Time        `json:"entry_time"`
	ExitPrice  float64          `json:"exit_price"`
	ExitTime   time.Time        `json:"exit_time"`
	PnL        float64          `json:"pnl"`         // quote units, net of exit fee
	PnLPercent float64          `json:"pnl_percent"` // net PnL over committed margin
	Reason     string           `json:"reason"`
	Balance    float64          `json:"balance"` // balance after this close
}

// AccountState is the unit of persistence: everything the engine must
// remember across restarts.
//
// Invariants: Available <= Balance while flat; Available = Balance -
// Position.Margin while in position; Balance only changes on close.
type AccountState struct {
	Balance        float64       `json:"balance"`
	Available      float64       `json:"available"`
	InPosition     bool          `json:"in_position"`
	Position       *Position     `json:"position"`
	Trades         []TradeRecord `json:"trades"`
	TradeSeq       int64         `json:"trade_counter"`
	SkipNextSignal bool          `json:"skip_next_signal"`
}

// DefaultState returns the initial account for a given starting bank.
func DefaultState(startBalance float64) AccountState {
	return AccountState{
		Balance:   startBalance,
		Available: startBalance,
	}
}

// clone deep-copies the state so callers can never alias the ledger's
// internal slices or position.
func (s AccountState) clone() AccountState {
	out := s
	if s.Position != nil {
		p := *s.Position
		out.Position = &p
	}
	if s.Trades != nil {
		out.Trades = make([]TradeRecord, len(s.Trades))
		copy(out.Trades, s.Trades)
	}
	return out
}
