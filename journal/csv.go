package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"sarbot/ledger"
)

// CSV is an append-only journal; queries are not supported. Use the
// SQLite or Postgres backends when the CLI query commands are needed.
type CSV struct {
	w *csv.Writer
	f *os.File
}

func NewCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write([]string{"id", "seq", "side", "entry_price", "entry_time", "exit_price", "exit_time", "pnl", "pnl_percent", "reason", "balance"}); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}

	return &CSV{w: w, f: f}, nil
}

func (j *CSV) RecordTrade(r ledger.TradeRecord) error {
	j.w.Write([]string{
		r.ID,
		strconv.FormatInt(r.Seq, 10),
		r.Side.String(),
		f(r.EntryPrice),
		r.EntryTime.Format(time.RFC3339),
		f(r.ExitPrice),
		r.ExitTime.Format(time.RFC3339),
		f(r.PnL),
		f(r.PnLPercent),
		r.Reason,
		f(r.Balance),
	})
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) GetTrade(id string) (ledger.TradeRecord, error) {
	return ledger.TradeRecord{}, fmt.Errorf("journal: csv backend does not support queries")
}

func (j *CSV) ListTradesClosedBetween(start, end time.Time) ([]ledger.TradeRecord, error) {
	return nil, fmt.Errorf("journal: csv backend does not support queries")
}

func (j *CSV) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		j.f.Close()
		return err
	}
	return j.f.Close()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
