package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"sarbot/ledger"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(connStr string) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: postgres ping: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (j *Postgres) RecordTrade(r ledger.TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(id, seq, side, entry_price, entry_time, exit_price, exit_time, pnl, pnl_percent, reason, balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.ID, r.Seq, r.Side.String(), r.EntryPrice, r.EntryTime,
		r.ExitPrice, r.ExitTime, r.PnL, r.PnLPercent, r.Reason, r.Balance,
	)
	return err
}

func (j *Postgres) GetTrade(id string) (ledger.TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT id, seq, side, entry_price, entry_time, exit_price, exit_time, pnl, pnl_percent, reason, balance
		FROM trades
		WHERE id = $1`, id)

	rec, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return ledger.TradeRecord{}, fmt.Errorf("trade %q not found", id)
	}
	return rec, err
}

func (j *Postgres) ListTradesClosedBetween(start, end time.Time) ([]ledger.TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, seq, side, entry_price, entry_time, exit_price, exit_time, pnl, pnl_percent, reason, balance
		FROM trades
		WHERE exit_time >= $1 AND exit_time < $2
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

func (j *Postgres) Close() error {
	return j.db.Close()
}
