// Package notify delivers trade notifications. Implementations satisfy
// ledger.Sink; delivery failures are logged and never reach the trading
// path.
package notify

import (
	"fmt"
	"log"
	"time"

	"sarbot/ledger"
)

// Sender posts a raw text message to a channel.
type Sender interface {
	Send(msg string) error
}

// Sink adapts a Sender to the ledger's notification hooks, formatting
// open/close events and retrying sends.
type Sink struct {
	sender  Sender
	retries int
	delay   time.Duration
}

// NewSink wraps a sender. retries is the number of additional attempts
// after a failed send.
func NewSink(sender Sender, retries int, delay time.Duration) *Sink {
	if retries < 0 {
		retries = 0
	}
	return &Sink{sender: sender, retries: retries, delay: delay}
}

func (s *Sink) OnOpen(pos ledger.Position, balance float64) {
	msg := fmt.Sprintf("🚀 Opened %s #%d\nEntry: $%.2f\nSize: %.4f\nMargin: $%.2f (%gx)\nBalance: $%.2f",
		pos.Side, pos.Seq, pos.EntryPrice, pos.Size, pos.Margin, pos.Leverage, balance)
	s.send(msg)
}

func (s *Sink) OnClose(rec ledger.TradeRecord, exitPrice, balance float64) {
	msg := fmt.Sprintf("🛑 Closed %s #%d\nExit: $%.2f\nPnL: $%.2f (%.2f%%)\nReason: %s\nBalance: $%.2f",
		rec.Side, rec.Seq, exitPrice, rec.PnL, rec.PnLPercent, rec.Reason, balance)
	s.send(msg)
}

func (s *Sink) send(msg string) {
	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(s.delay)
		}
		if err = s.sender.Send(msg); err == nil {
			return
		}
	}
	log.Printf("notify | send failed after %d attempts: %v", s.retries+1, err)
}
