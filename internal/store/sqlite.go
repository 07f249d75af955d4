package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// SQLite stores snapshots in the daily_sessions table as JSON.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an open database that has the daily_sessions table.
func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

// Get implements Store. Corrupt rows are logged and treated as absent.
func (s *SQLite) Get(ctx context.Context, key Key) (*Snapshot, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM daily_sessions WHERE player_id=? AND date=?`,
		key.Player, key.Date.String(),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Warn().Err(err).Str("player", key.Player).Stringer("date", key.Date).Msg("discarding corrupt snapshot")
		return nil, nil
	}
	return &snap, nil
}

// Set implements Store.
func (s *SQLite) Set(ctx context.Context, key Key, snap Snapshot) error {
	if snap.Guesses == nil {
		snap.Guesses = []string{}
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO daily_sessions (player_id, date, snapshot, updated_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(player_id, date) DO UPDATE SET
            snapshot = excluded.snapshot,
            updated_at = excluded.updated_at`,
		key.Player, key.Date.String(), string(raw),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}
