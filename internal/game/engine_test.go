package game

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/flagle/internal/daily"
	"github.com/robalobadob/flagle/internal/pixel"
	"github.com/robalobadob/flagle/internal/pool"
	"github.com/robalobadob/flagle/internal/reveal"
	"github.com/robalobadob/flagle/internal/store"
)

var testDate = daily.Date{Year: 2025, Month: time.January, Day: 1}

// solid returns a 4x2 flag whose left half is c and right half is black.
func solid(c pixel.RGBA) *pixel.Buffer {
	b := pixel.New(4, 2)
	b.Fill(0, 0, 2, 2, c)
	b.Fill(2, 0, 4, 2, pixel.RGBA{A: 255})
	return b
}

type fixture struct {
	pool   *pool.Pool
	loader pixel.MapLoader
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	entries := []pool.Entry{{Code: "AA", Name: "Alpha"}, {Code: "BB", Name: "Beta"}, {Code: "CC", Name: "Gamma"}}
	loader := pixel.MapLoader{}
	for i := 0; i < 10; i++ {
		code := fmt.Sprintf("X%d", i)
		entries = append(entries, pool.Entry{Code: code, Name: "Extra " + code})
		loader[code] = solid(pixel.RGBA{R: uint8(100 + i), A: 255})
	}
	loader["AA"] = solid(pixel.RGBA{R: 255, A: 255})
	loader["BB"] = solid(pixel.RGBA{G: 255, A: 255})
	loader["CC"] = solid(pixel.RGBA{B: 255, A: 255})
	p, err := pool.New(entries)
	require.NoError(t, err)
	return fixture{pool: p, loader: loader}
}

func (f fixture) session(t *testing.T, target string) *Session {
	t.Helper()
	e, ok := f.pool.Lookup(target)
	require.True(t, ok)
	return NewSession(testDate, e, f.pool, f.loader, f.loader[target])
}

func TestSubmitGuessSolves(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, "AA")
	ctx := context.Background()

	rec, err := s.SubmitGuess(ctx, "BB")
	require.NoError(t, err)
	assert.Equal(t, 50.0, rec.RevealPercentage, "black right half matches")
	assert.False(t, rec.ExactMatch)
	assert.Equal(t, 1, rec.Order)
	assert.Equal(t, "Beta", rec.DisplayName)
	assert.Nil(t, s.End())

	rec, err = s.SubmitGuess(ctx, "AA")
	require.NoError(t, err)
	assert.True(t, rec.ExactMatch)
	assert.True(t, rec.LooksCorrect())
	assert.Equal(t, StatusSolved, s.Status())
	assert.Equal(t, &EndEvent{Won: true, TargetDisplayName: "Alpha"}, s.End())
	assert.Equal(t, 100.0, s.RevealPercentage())

	_, err = s.SubmitGuess(ctx, "CC")
	require.ErrorIs(t, err, ErrGameOver)
	assert.Len(t, s.Guesses(), 2)
	assert.Equal(t, store.Snapshot{Guesses: []string{"BB", "AA"}, Solved: true}, s.Snapshot())
}

func TestSubmitGuessExhausts(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, "AA")
	ctx := context.Background()

	for i := 0; i < MaxGuesses; i++ {
		require.Equal(t, StatusInProgress, s.Status())
		_, err := s.SubmitGuess(ctx, fmt.Sprintf("X%d", i))
		require.NoError(t, err)
	}
	assert.Equal(t, StatusExhausted, s.Status())
	assert.Equal(t, &EndEvent{Won: false, TargetDisplayName: "Alpha"}, s.End())
	assert.Equal(t, 100.0, s.RevealPercentage(), "flag is uncovered at game end")

	_, err := s.SubmitGuess(ctx, "AA")
	require.ErrorIs(t, err, ErrGameOver)
	assert.Len(t, s.Guesses(), MaxGuesses)
	assert.False(t, s.Snapshot().Solved)
}

func TestSolvingOnLastGuessWins(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, "AA")
	ctx := context.Background()
	for i := 0; i < MaxGuesses-1; i++ {
		_, err := s.SubmitGuess(ctx, fmt.Sprintf("X%d", i))
		require.NoError(t, err)
	}
	_, err := s.SubmitGuess(ctx, "AA")
	require.NoError(t, err)
	assert.Equal(t, StatusSolved, s.Status())
}

func TestSubmitGuessRejections(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, "AA")
	ctx := context.Background()
	_, err := s.SubmitGuess(ctx, "BB")
	require.NoError(t, err)
	before := s.Bitmap()

	tests := []struct {
		name string
		id   string
		want error
	}{
		{name: "duplicate", id: "BB", want: ErrDuplicateGuess},
		{name: "unknown", id: "ZZ", want: ErrUnknownEntry},
		{name: "empty", id: "", want: ErrUnknownEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SubmitGuess(ctx, tt.id)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, IsRejection(err))
			assert.Len(t, s.Guesses(), 1)
			assert.Equal(t, before, s.Bitmap())
			assert.Equal(t, StatusInProgress, s.Status())
		})
	}
}

func TestSubmitGuessLoadFailureLeavesStateAlone(t *testing.T) {
	f := newFixture(t)
	delete(f.loader, "CC")
	s := f.session(t, "AA")

	_, err := s.SubmitGuess(context.Background(), "CC")
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
	assert.False(t, IsRejection(err))
	assert.Empty(t, s.Guesses())
	assert.Equal(t, StatusInProgress, s.Status())

	// A retry after the asset appears succeeds.
	f.loader["CC"] = solid(pixel.RGBA{B: 255, A: 255})
	_, err = s.SubmitGuess(context.Background(), "CC")
	require.NoError(t, err)
}

func TestSubmitGuessShapeMismatch(t *testing.T) {
	f := newFixture(t)
	f.loader["CC"] = pixel.New(8, 8)
	s := f.session(t, "AA")

	_, err := s.SubmitGuess(context.Background(), "CC")
	require.ErrorIs(t, err, reveal.ErrShapeMismatch)
	assert.Empty(t, s.Guesses())
}

// gateLoader blocks until release is closed.
type gateLoader struct {
	next    pixel.Loader
	entered chan struct{}
	release chan struct{}
}

func (g *gateLoader) Load(ctx context.Context, id string) (*pixel.Buffer, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.next.Load(ctx, id)
}

func TestSubmitGuessRejectsConcurrentSubmission(t *testing.T) {
	f := newFixture(t)
	gate := &gateLoader{next: f.loader, entered: make(chan struct{}, 1), release: make(chan struct{})}
	e, _ := f.pool.Lookup("AA")
	s := NewSession(testDate, e, f.pool, gate, f.loader["AA"])

	done := make(chan error, 1)
	go func() {
		_, err := s.SubmitGuess(context.Background(), "BB")
		done <- err
	}()
	<-gate.entered

	_, err := s.SubmitGuess(context.Background(), "CC")
	require.ErrorIs(t, err, ErrBusy)

	close(gate.release)
	require.NoError(t, <-done)
	assert.Len(t, s.Guesses(), 1)

	// Busy flag is cleared afterwards.
	gate.entered = make(chan struct{}, 1)
	_, err = s.SubmitGuess(context.Background(), "CC")
	require.NoError(t, err)
}

func TestRestoreReplaysInOrder(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, "CC")
	require.NoError(t, s.Restore(context.Background(), store.Snapshot{Guesses: []string{"AA"}}))

	assert.Equal(t, StatusInProgress, s.Status())
	gs := s.Guesses()
	require.Len(t, gs, 1)
	assert.Equal(t, "AA", gs[0].ID)
	assert.Equal(t, 50.0, gs[0].RevealPercentage)
}

func TestRestoreSolvedAndSkipsStaleEntries(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, "CC")
	snap := store.Snapshot{Guesses: []string{"AA", "gone", "AA", "CC", "BB"}, Solved: true}
	require.NoError(t, s.Restore(context.Background(), snap))

	assert.Equal(t, StatusSolved, s.Status())
	assert.Equal(t, store.Snapshot{Guesses: []string{"AA", "CC"}, Solved: true}, s.Snapshot())
	assert.Equal(t, 100.0, s.RevealPercentage())
}

func TestRestoreFailsOnLoadError(t *testing.T) {
	f := newFixture(t)
	delete(f.loader, "BB")
	s := f.session(t, "CC")
	err := s.Restore(context.Background(), store.Snapshot{Guesses: []string{"BB"}})
	require.Error(t, err)
	var le *pixel.LoadError
	assert.True(t, errors.As(err, &le))
}

func TestViews(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, "AA")
	_, err := s.SubmitGuess(context.Background(), "AA")
	require.NoError(t, err)
	assert.Equal(t, []GuessView{{DisplayName: "Alpha", RevealPercentage: 100, IsExactMatch: true, Highlight: true}}, s.Views())
}
