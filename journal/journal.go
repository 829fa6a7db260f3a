// Package journal keeps the queryable history of closed trades. The
// snapshot in package store remains the source of truth for restart
// recovery; the journal exists for reporting and the CLI.
package journal

import (
	"fmt"
	"time"

	"sarbot/ledger"
)

// Journal appends closed trades and serves simple queries. The SQLite
// and Postgres backends support queries; CSV is append-only.
type Journal interface {
	RecordTrade(ledger.TradeRecord) error
	GetTrade(id string) (ledger.TradeRecord, error)
	ListTradesClosedBetween(start, end time.Time) ([]ledger.TradeRecord, error)
	Close() error
}

// Config selects and parameterizes a journal backend.
type Config struct {
	Type    string `yaml:"type"` // "sqlite", "postgres", "csv", or "" for none
	Path    string `yaml:"path"` // sqlite db or csv file path
	ConnStr string `yaml:"conn_str"`
}

// Open builds the configured backend. An empty type yields a no-op
// journal so the engine runs without one.
func Open(cfg Config) (Journal, error) {
	switch cfg.Type {
	case "":
		return Noop{}, nil
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(cfg.ConnStr)
	case "csv":
		return NewCSV(cfg.Path)
	default:
		return nil, fmt.Errorf("journal: unknown type %q", cfg.Type)
	}
}

// Noop discards trades; queries report nothing.
type Noop struct{}

func (Noop) RecordTrade(ledger.TradeRecord) error { return nil }

func (Noop) GetTrade(id string) (ledger.TradeRecord, error) {
	return ledger.TradeRecord{}, fmt.Errorf("trade %q not found", id)
}

func (Noop) ListTradesClosedBetween(start, end time.Time) ([]ledger.TradeRecord, error) {
	return nil, nil
}

func (Noop) Close() error { return nil }
