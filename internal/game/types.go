// internal/game/types.go
//
// Core type definitions for a daily flag session.
// Defines:
//   - Status: in progress, solved or exhausted.
//   - GuessRecord: one accepted guess and the reveal it produced.
//   - GuessView / EndEvent: what the presentation layer renders.
//   - Rejection errors for guesses that leave the session untouched.

package game

import "errors"

// MaxGuesses is the number of guesses a player gets per day.
const MaxGuesses = 6

// correctDisplayThreshold is the reveal percentage at which a row is drawn as
// correct. Display only: winning is decided by identifier equality.
const correctDisplayThreshold = 99.99

// Status is the session state.
//   - "in_progress": guesses may still be submitted.
//   - "solved":      the target was guessed (terminal).
//   - "exhausted":   MaxGuesses misses (terminal).
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSolved     Status = "solved"
	StatusExhausted  Status = "exhausted"
)

// Terminal reports whether no further guesses are accepted.
func (s Status) Terminal() bool { return s != StatusInProgress }

// Rejected guesses. The session is unchanged when one of these is returned.
var (
	ErrGameOver       = errors.New("game over")
	ErrDuplicateGuess = errors.New("already guessed")
	ErrUnknownEntry   = errors.New("not in pool")
	ErrBusy           = errors.New("guess in progress")
)

// IsRejection reports whether err is one of the rejection errors above.
func IsRejection(err error) bool {
	return errors.Is(err, ErrGameOver) || errors.Is(err, ErrDuplicateGuess) ||
		errors.Is(err, ErrUnknownEntry) || errors.Is(err, ErrBusy)
}

// GuessRecord is an accepted guess. Order starts at 1.
type GuessRecord struct {
	ID               string  `json:"code"`
	DisplayName      string  `json:"name"`
	RevealPercentage float64 `json:"revealPercentage"`
	Order            int     `json:"order"`
	ExactMatch       bool    `json:"isExactMatch"`
}

// LooksCorrect reports whether the row should be highlighted as a full match.
func (g GuessRecord) LooksCorrect() bool {
	return g.RevealPercentage >= correctDisplayThreshold
}

// GuessView is the per-guess output rendered by clients.
type GuessView struct {
	DisplayName      string  `json:"displayName"`
	RevealPercentage float64 `json:"revealPercentage"`
	IsExactMatch     bool    `json:"isExactMatch"`
	Highlight        bool    `json:"highlight"`
}

// View converts a record for display.
func (g GuessRecord) View() GuessView {
	return GuessView{
		DisplayName:      g.DisplayName,
		RevealPercentage: g.RevealPercentage,
		IsExactMatch:     g.ExactMatch,
		Highlight:        g.LooksCorrect(),
	}
}

// EndEvent is emitted once the session reaches a terminal state.
type EndEvent struct {
	Won               bool   `json:"won"`
	TargetDisplayName string `json:"targetDisplayName"`
}
