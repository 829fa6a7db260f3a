package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sarbot/ledger"
	"sarbot/market"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	open := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)
	close := time.Date(2024, 3, 15, 14, 20, 30, 0, time.UTC)

	trade := ledger.TradeRecord{
		ID:         "01HV3M5J8NQR4T6W8Y0A2C4E6G",
		Seq:        7,
		Side:       market.Long,
		EntryPrice: 2000,
		EntryTime:  open,
		ExitPrice:  2100,
		ExitTime:   close,
		PnL:        0.4582,
		PnLPercent: 9.17,
		Reason:     "sar_reversal_5m",
		Balance:    100.46,
	}

	result := FormatTradeOrg(trade)

	assert.Contains(t, result, "** Trade #7: long (01HV3M5J)")
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":TRADE_ID: 01HV3M5J8NQR4T6W8Y0A2C4E6G")
	assert.Contains(t, result, ":SIDE: long")
	assert.Contains(t, result, ":ENTRY_PRICE: 2000.00000")
	assert.Contains(t, result, ":EXIT_PRICE: 2100.00000")
	assert.Contains(t, result, ":OPEN_TIME: 2024-03-15T10:30:45Z")
	assert.Contains(t, result, ":CLOSE_TIME: 2024-03-15T14:20:30Z")
	assert.Contains(t, result, ":PNL: 0.46")
	assert.Contains(t, result, ":PNL_PCT: 9.17")
	assert.Contains(t, result, ":REASON: sar_reversal_5m")
	assert.Contains(t, result, ":BALANCE: 100.46")
	assert.Contains(t, result, ":END:")

	assert.Contains(t, result, "*** Thesis")
	assert.Contains(t, result, "*** Execution")
	assert.Contains(t, result, "*** Review")
}

func TestFormatTradeOrgShortID(t *testing.T) {
	t.Parallel()

	trade := ledger.TradeRecord{ID: "short", Side: market.Short}
	assert.Contains(t, FormatTradeOrg(trade), "(short)")
}

func TestFormatTradesOrgSeparatesBlocks(t *testing.T) {
	t.Parallel()

	trades := []ledger.TradeRecord{
		{ID: "01A", Seq: 1, Side: market.Long},
		{ID: "01B", Seq: 2, Side: market.Short},
	}

	result := FormatTradesOrg(trades)
	assert.Equal(t, 2, strings.Count(result, ":PROPERTIES:"))
	assert.Contains(t, result, "** Trade #1: long")
	assert.Contains(t, result, "** Trade #2: short")
}
