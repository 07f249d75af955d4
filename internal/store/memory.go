// internal/store/memory.go
//
// Persistence of per-day session snapshots.
//
// A snapshot is everything needed to rebuild a session by replay: the guessed
// identifiers in submission order and whether the flag was found. Snapshots are
// keyed by player and calendar date, so every day starts from nothing.
//
// Implementations:
//   - memory (this file): map guarded by an RWMutex, lost on restart.
//   - SQLite (sqlite.go): daily_sessions table, survives restarts.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/flagle/internal/daily"
)

// Key identifies one player's session on one calendar day.
type Key struct {
	Player string
	Date   daily.Date
}

// Snapshot is the persisted form of a session.
type Snapshot struct {
	Guesses []string `json:"guesses"`
	Solved  bool     `json:"solved"`
	// StartedAt is when the first guess was accepted; zero before that.
	StartedAt time.Time `json:"startedAt,omitzero"`
}

// Store defines the persistence interface for session snapshots.
type Store interface {
	// Get returns the snapshot for key, or nil when there is none. A stored
	// snapshot that cannot be decoded is reported as none.
	Get(ctx context.Context, key Key) (*Snapshot, error)

	// Set replaces the snapshot for key.
	Set(ctx context.Context, key Key, snap Snapshot) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex // guards snaps
	snaps map[Key]Snapshot
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{snaps: make(map[Key]Snapshot)}
}

// Get returns a copy of the stored snapshot.
func (m *memory) Get(_ context.Context, key Key) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snaps[key]
	if !ok {
		return nil, nil
	}
	s.Guesses = append([]string(nil), s.Guesses...)
	return &s, nil
}

// Set stores a copy so later mutation by the caller cannot leak in.
func (m *memory) Set(_ context.Context, key Key, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap.Guesses = append([]string(nil), snap.Guesses...)
	m.snaps[key] = snap
	return nil
}
