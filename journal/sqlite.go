package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"sarbot/ledger"
	"sarbot/market"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(r ledger.TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(id, seq, side, entry_price, entry_time, exit_price, exit_time, pnl, pnl_percent, reason, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Seq, r.Side.String(), r.EntryPrice, r.EntryTime,
		r.ExitPrice, r.ExitTime, r.PnL, r.PnLPercent, r.Reason, r.Balance,
	)
	return err
}

func (j *SQLite) GetTrade(id string) (ledger.TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT id, seq, side, entry_price, entry_time, exit_price, exit_time, pnl, pnl_percent, reason, balance
		FROM trades
		WHERE id = ?`, id)

	rec, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return ledger.TradeRecord{}, fmt.Errorf("trade %q not found", id)
	}
	return rec, err
}

// ListTradesClosedBetween returns trades whose exit_time is within
// [start, end), oldest first.
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]ledger.TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, seq, side, entry_price, entry_time, exit_price, exit_time, pnl, pnl_percent, reason, balance
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (ledger.TradeRecord, error) {
	var rec ledger.TradeRecord
	var side string
	err := row.Scan(
		&rec.ID,
		&rec.Seq,
		&side,
		&rec.EntryPrice,
		&rec.EntryTime,
		&rec.ExitPrice,
		&rec.ExitTime,
		&rec.PnL,
		&rec.PnLPercent,
		&rec.Reason,
		&rec.Balance,
	)
	if err != nil {
		return ledger.TradeRecord{}, err
	}
	rec.Side = market.ParseDirection(side)
	return rec, nil
}
