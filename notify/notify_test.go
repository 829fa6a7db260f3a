package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sarbot/ledger"
	"sarbot/market"
)

type fakeSender struct {
	msgs     []string
	failures int
}

func (s *fakeSender) Send(msg string) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("boom")
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

func TestSinkFormatsOpenAndClose(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	sink := NewSink(sender, 0, 0)

	sink.OnOpen(ledger.Position{
		Seq: 3, Side: market.Long, EntryPrice: 2000, Size: 0.01, Margin: 19.99, Leverage: 5,
	}, 100)
	sink.OnClose(ledger.TradeRecord{
		Seq: 3, Side: market.Long, PnL: 4.2, PnLPercent: 21.0, Reason: "sar_reversal_5m",
	}, 2100, 104.2)

	require.Len(t, sender.msgs, 2)
	assert.Contains(t, sender.msgs[0], "Opened long #3")
	assert.Contains(t, sender.msgs[0], "$2000.00")
	assert.Contains(t, sender.msgs[1], "Closed long #3")
	assert.Contains(t, sender.msgs[1], "sar_reversal_5m")
}

func TestSinkRetriesFailedSends(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failures: 2}
	sink := NewSink(sender, 3, time.Millisecond)

	sink.OnOpen(ledger.Position{Seq: 1, Side: market.Short}, 100)
	require.Len(t, sender.msgs, 1)
}

func TestSinkGivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failures: 10}
	sink := NewSink(sender, 1, time.Millisecond)

	// Must not panic or block; the failure is logged only.
	sink.OnOpen(ledger.Position{Seq: 1, Side: market.Long}, 100)
	assert.Empty(t, sender.msgs)
}
