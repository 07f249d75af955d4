package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/flagle/internal/daily"
	"github.com/robalobadob/flagle/internal/pixel"
	"github.com/robalobadob/flagle/internal/pool"
	"github.com/robalobadob/flagle/internal/store"
)

// ResultRecorder receives finished games. daily.Store satisfies it.
type ResultRecorder interface {
	InsertResult(ctx context.Context, r daily.Result) error
}

// Service hands out per-player sessions for the current day and persists
// them after every accepted guess.
type Service struct {
	pool     *pool.Pool
	selector *daily.Selector
	loader   pixel.Loader
	store    store.Store
	results  ResultRecorder // optional
	clock    daily.Clock

	mu       sync.Mutex
	sessions map[store.Key]*liveSession
}

// liveSession serialises guess, persist and result recording for one session.
// started is the time of the first accepted guess.
type liveSession struct {
	*Session

	mu      sync.Mutex
	started time.Time
}

// Options configures a Service.
type Options struct {
	Pool     *pool.Pool
	Selector *daily.Selector
	Loader   pixel.Loader
	Store    store.Store
	Results  ResultRecorder
	Clock    daily.Clock
}

// NewService wires a Service. Clock defaults to the system clock in the
// selector's location.
func NewService(o Options) *Service {
	if o.Clock == nil {
		o.Clock = daily.SystemClock{Loc: o.Selector.Location()}
	}
	return &Service{
		pool:     o.Pool,
		selector: o.Selector,
		loader:   o.Loader,
		store:    o.Store,
		results:  o.Results,
		clock:    o.Clock,
		sessions: make(map[store.Key]*liveSession),
	}
}

// Pool returns the pool the service draws from.
func (s *Service) Pool() *pool.Pool { return s.pool }

func (s *Service) now() time.Time {
	return s.clock.Now().In(s.selector.Location())
}

// Today returns the current calendar date.
func (s *Service) Today() daily.Date { return daily.DateOf(s.now()) }

// Countdown returns the time left until the next daily flag.
func (s *Service) Countdown() time.Duration { return daily.UntilNextDay(s.now()) }

// Open returns player's session for today, restoring persisted guesses the
// first time it is opened in this process. Failing to load the target is an
// initialisation error for the session.
func (s *Service) Open(ctx context.Context, player string) (*Session, error) {
	ls, err := s.open(ctx, player)
	if err != nil {
		return nil, err
	}
	return ls.Session, nil
}

func (s *Service) open(ctx context.Context, player string) (*liveSession, error) {
	now := s.now()
	key := store.Key{Player: player, Date: daily.DateOf(now)}

	s.mu.Lock()
	if ls, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		return ls, nil
	}
	s.mu.Unlock()

	code := s.selector.Target(now)
	target, ok := s.pool.Lookup(code)
	if !ok {
		return nil, fmt.Errorf("target %q missing from pool", code)
	}
	buf, err := s.loader.Load(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load target: %w", err)
	}
	sess := NewSession(key.Date, target, s.pool, s.loader, buf)
	ls := &liveSession{Session: sess}

	snap, err := s.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("player", player).Msg("read snapshot; starting fresh")
	}
	if snap != nil {
		if err := sess.Restore(ctx, *snap); err != nil {
			return nil, fmt.Errorf("restore session: %w", err)
		}
		ls.started = snap.StartedAt
		if ls.started.IsZero() && len(snap.Guesses) > 0 {
			ls.started = now
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.sessions[key]; ok {
		return cached, nil
	}
	s.pruneLocked(key.Date)
	s.sessions[key] = ls
	return ls, nil
}

// pruneLocked drops sessions of past days.
func (s *Service) pruneLocked(today daily.Date) {
	for k := range s.sessions {
		if k.Date != today {
			delete(s.sessions, k)
		}
	}
}

// Resolve maps user input to a pool identifier: an identifier is used as is,
// otherwise an exact display name is looked up. Unknown input is returned
// unchanged so SubmitGuess rejects it.
func (s *Service) Resolve(input string) string {
	if _, ok := s.pool.Lookup(input); ok {
		return input
	}
	if e, ok := s.pool.ResolveName(input); ok {
		return e.Code
	}
	return input
}

// Guess submits id for player, persists the new snapshot and records the
// result when the game ends. While one guess of a session is being applied or
// persisted, another fails with ErrBusy. Writes outlive a cancelled request
// because the guess is already accepted in memory.
func (s *Service) Guess(ctx context.Context, player, id string) (*Session, GuessRecord, error) {
	ls, err := s.open(ctx, player)
	if err != nil {
		return nil, GuessRecord{}, err
	}
	if !ls.mu.TryLock() {
		return ls.Session, GuessRecord{}, ErrBusy
	}
	defer ls.mu.Unlock()

	rec, err := ls.SubmitGuess(ctx, id)
	if err != nil {
		return ls.Session, GuessRecord{}, err
	}
	if ls.started.IsZero() {
		ls.started = s.now()
	}

	wctx := context.WithoutCancel(ctx)
	snap := ls.Snapshot()
	snap.StartedAt = ls.started
	key := store.Key{Player: player, Date: ls.Date}
	if err := s.store.Set(wctx, key, snap); err != nil {
		log.Error().Err(err).Str("player", player).Msg("persist snapshot")
	}

	if end := ls.End(); end != nil && s.results != nil {
		r := daily.Result{
			UserID:    player,
			Date:      ls.Date.String(),
			DayIndex:  s.selector.DayIndex(ls.Date.Midnight(s.selector.Location())),
			Target:    ls.Target.Code,
			Won:       end.Won,
			Guesses:   rec.Order,
			ElapsedMs: int(s.now().Sub(ls.started).Milliseconds()),
		}
		if err := s.results.InsertResult(wctx, r); err != nil {
			log.Warn().Err(err).Str("player", player).Msg("record daily result")
		}
	}
	return ls.Session, rec, nil
}
