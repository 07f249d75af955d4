// internal/game/engine.go
//
// Session state machine for one player's daily flag.
// Responsibilities:
//   - Validate guesses (not over, not repeated, known to the pool).
//   - Fetch the guess flag and feed it to the reveal engine.
//   - Track state transitions: in_progress → solved | exhausted.
//   - Snapshot and replay for persistence across reloads.
//
// Notes:
//   - Only one submission runs at a time; a second caller gets ErrBusy while
//     the first is waiting for its flag to load.
//   - The win rule is identifier equality. Two flags can coincide pixel for
//     pixel after quantisation, so the reveal percentage never decides a game.
package game

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/flagle/internal/daily"
	"github.com/robalobadob/flagle/internal/pixel"
	"github.com/robalobadob/flagle/internal/pool"
	"github.com/robalobadob/flagle/internal/reveal"
	"github.com/robalobadob/flagle/internal/store"
)

// Session holds the state of one player's game for one calendar day.
type Session struct {
	Date   daily.Date
	Target pool.Entry

	pool   *pool.Pool
	loader pixel.Loader
	engine *reveal.Engine

	mu      sync.Mutex // guards the fields below
	busy    bool
	guesses []GuessRecord
	status  Status
}

// NewSession starts an in-progress session against target, whose decoded
// flag is targetBuf. Guess flags are fetched through loader.
func NewSession(date daily.Date, target pool.Entry, p *pool.Pool, loader pixel.Loader, targetBuf *pixel.Buffer) *Session {
	return &Session{
		Date:    date,
		Target:  target,
		pool:    p,
		loader:  loader,
		engine:  reveal.NewEngine(targetBuf),
		guesses: []GuessRecord{},
		status:  StatusInProgress,
	}
}

// SubmitGuess validates and applies a guess, mutating the session.
//
// Rejections (ErrGameOver, ErrDuplicateGuess, ErrUnknownEntry, ErrBusy) and
// load failures (*pixel.LoadError) leave the session exactly as it was.
//
// State transitions:
//   - id equals the target → solved.
//   - else if the guess count reaches MaxGuesses → exhausted.
//
// Either terminal transition uncovers the whole flag.
func (s *Session) SubmitGuess(ctx context.Context, id string) (GuessRecord, error) {
	entry, err := s.begin(id)
	if err != nil {
		return GuessRecord{}, err
	}
	defer s.end()

	buf, err := s.loader.Load(ctx, id)
	if err != nil {
		return GuessRecord{}, err
	}
	pct, err := s.engine.ApplyGuess(buf)
	if err != nil {
		return GuessRecord{}, fmt.Errorf("apply %q: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec := GuessRecord{
		ID:               entry.Code,
		DisplayName:      entry.Name,
		RevealPercentage: pct,
		Order:            len(s.guesses) + 1,
		ExactMatch:       entry.Code == s.Target.Code,
	}
	s.guesses = append(s.guesses, rec)

	switch {
	case rec.ExactMatch:
		s.status = StatusSolved
	case len(s.guesses) >= MaxGuesses:
		s.status = StatusExhausted
	}
	if s.status.Terminal() {
		s.engine.RevealAll()
	}
	return rec, nil
}

// begin checks the guess and marks the session busy.
func (s *Session) begin(id string) (pool.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return pool.Entry{}, ErrBusy
	}
	if s.status.Terminal() {
		return pool.Entry{}, ErrGameOver
	}
	for _, g := range s.guesses {
		if g.ID == id {
			return pool.Entry{}, ErrDuplicateGuess
		}
	}
	entry, ok := s.pool.Lookup(id)
	if !ok {
		return pool.Entry{}, ErrUnknownEntry
	}
	s.busy = true
	return entry, nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Status returns the current state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Guesses returns a copy of the accepted guesses in submission order.
func (s *Session) Guesses() []GuessRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]GuessRecord(nil), s.guesses...)
}

// Views returns the display rows for every accepted guess.
func (s *Session) Views() []GuessView {
	gs := s.Guesses()
	out := make([]GuessView, len(gs))
	for i, g := range gs {
		out[i] = g.View()
	}
	return out
}

// End returns the end event, or nil while the game is running.
func (s *Session) End() *EndEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status.Terminal() {
		return nil
	}
	return &EndEvent{Won: s.status == StatusSolved, TargetDisplayName: s.Target.Name}
}

// RevealPercentage returns the share of the flag uncovered so far.
func (s *Session) RevealPercentage() float64 { return s.engine.Percentage() }

// Bitmap returns a copy of the reveal bitmap.
func (s *Session) Bitmap() reveal.Bitmap { return s.engine.Snapshot() }

// Image renders the flag as the player currently sees it.
func (s *Session) Image(hidden color.NRGBA) *image.NRGBA { return s.engine.Composite(hidden) }

// Snapshot returns the persisted form of the session.
func (s *Session) Snapshot() store.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.guesses))
	for i, g := range s.guesses {
		ids[i] = g.ID
	}
	return store.Snapshot{Guesses: ids, Solved: s.status == StatusSolved}
}

// Restore replays a persisted snapshot in its original order. Entries that are
// no longer acceptable (removed from the pool, repeated, past the limit) are
// skipped. A flag that fails to load aborts the restore.
func (s *Session) Restore(ctx context.Context, snap store.Snapshot) error {
	for _, id := range snap.Guesses {
		if _, err := s.SubmitGuess(ctx, id); err != nil {
			if IsRejection(err) {
				log.Warn().Err(err).Str("guess", id).Stringer("date", s.Date).Msg("skipping stored guess")
				continue
			}
			return fmt.Errorf("replay %q: %w", id, err)
		}
	}
	if snap.Solved != (s.Status() == StatusSolved) {
		log.Warn().Bool("stored", snap.Solved).Str("status", string(s.Status())).Stringer("date", s.Date).
			Msg("stored solved flag disagrees with replay")
	}
	return nil
}

// IsLoadError reports whether err came from fetching a flag.
func IsLoadError(err error) bool { return errors.Is(err, pixel.ErrLoad) }
