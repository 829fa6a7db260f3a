// Package store persists the full account state as a single JSON
// snapshot on disk. The snapshot is rewritten whole after every
// state-mutating event, so a crash loses at most the in-flight tick.
package store

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"

	"sarbot/ledger"
)

type Snapshot struct {
	path string
}

// NewSnapshot returns a snapshot store backed by the given file path.
// The directory is created on the first save.
func NewSnapshot(path string) (*Snapshot, error) {
	if path == "" {
		return nil, errors.New("store: empty snapshot path")
	}
	return &Snapshot{path: path}, nil
}

// Load reads the most recent snapshot. A missing or empty file yields
// the provided defaults; a corrupt file is logged and treated as absent
// so the engine starts rather than failing.
func (s *Snapshot) Load(defaults ledger.AccountState) ledger.AccountState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("store | read %s: %v, starting from defaults", s.path, err)
		}
		return defaults
	}
	if len(data) == 0 {
		return defaults
	}

	// Unmarshal over the defaults so fields absent from older snapshots
	// keep their initial values.
	state := defaults
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("store | corrupt snapshot %s: %v, starting from defaults", s.path, err)
		return defaults
	}
	return state
}

// Save replaces the snapshot atomically via a temp-file rename.
func (s *Snapshot) Save(state ledger.AccountState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
