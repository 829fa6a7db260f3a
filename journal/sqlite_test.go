package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sarbot/ledger"
	"sarbot/market"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j, path
}

func sampleTrade(id string, seq int64, exit time.Time) ledger.TradeRecord {
	return ledger.TradeRecord{
		ID:         id,
		Seq:        seq,
		Side:       market.Long,
		EntryPrice: 2000,
		EntryTime:  exit.Add(-time.Hour),
		ExitPrice:  2100,
		ExitTime:   exit,
		PnL:        499.16,
		PnLPercent: 24.97,
		Reason:     "sar_reversal_5m",
		Balance:    100499.16,
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='trades'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "trades", name)
}

func TestSQLiteRecordAndGetTrade(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	exit := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	rec := sampleTrade("T1", 1, exit)
	require.NoError(t, j.RecordTrade(rec))

	got, err := j.GetTrade("T1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Seq, got.Seq)
	assert.Equal(t, market.Long, got.Side)
	assert.Equal(t, rec.PnL, got.PnL)
	assert.Equal(t, rec.Reason, got.Reason)
	assert.True(t, got.ExitTime.Equal(exit))
}

func TestSQLiteGetTradeNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	_, err := j.GetTrade("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestSQLiteListTradesClosedBetween(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(sampleTrade("T1", 1, day.Add(9*time.Hour))))
	require.NoError(t, j.RecordTrade(sampleTrade("T2", 2, day.Add(15*time.Hour))))
	require.NoError(t, j.RecordTrade(sampleTrade("T3", 3, day.Add(30*time.Hour)))) // next day

	got, err := j.ListTradesClosedBetween(day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "T1", got[0].ID)
	assert.Equal(t, "T2", got[1].ID)
}

func TestOpenSelectsBackend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	j, err := Open(Config{Type: "sqlite", Path: filepath.Join(dir, "j.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, j)
	assert.NoError(t, j.Close())

	j, err = Open(Config{Type: "csv", Path: filepath.Join(dir, "j.csv")})
	require.NoError(t, err)
	assert.IsType(t, &CSV{}, j)
	assert.NoError(t, j.Close())

	j, err = Open(Config{})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, j)

	_, err = Open(Config{Type: "mongo"})
	assert.Error(t, err)
}
