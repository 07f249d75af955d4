// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily flag.
// Exposes these endpoints under /daily:
//   - POST /daily/new         → open today's session (restores persisted guesses)
//   - POST /daily/guess       → submit a guess by code or display name
//   - GET  /daily/image       → PNG of the flag with unrevealed pixels hidden
//   - GET  /daily/countdown   → time left until the next flag
//   - GET  /daily/leaderboard → top results for today (or a given date)
//
// Every player gets one session per calendar day. Sessions live in the game
// service and are persisted after each accepted guess.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/flagle/internal/daily"
	"github.com/robalobadob/flagle/internal/game"
	"github.com/robalobadob/flagle/internal/reveal"
)

const leaderboardLimit = 20

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Post("/guess", s.handleDailyGuess)
		r.Get("/image", s.handleDailyImage)
		r.Get("/countdown", s.handleCountdown)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// -----------------------------------------------------------------------------
// /daily/new

// stateRes describes a session as clients render it.
type stateRes struct {
	Date             string           `json:"date"`
	State            game.Status      `json:"state"`
	MaxGuesses       int              `json:"maxGuesses"`
	Guesses          []game.GuessView `json:"guesses"`
	RevealPercentage float64          `json:"revealPercentage"`
	End              *game.EndEvent   `json:"end,omitempty"`
}

func stateOf(sess *game.Session) stateRes {
	return stateRes{
		Date:             sess.Date.String(),
		State:            sess.Status(),
		MaxGuesses:       game.MaxGuesses,
		Guesses:          sess.Views(),
		RevealPercentage: sess.RevealPercentage(),
		End:              sess.End(),
	}
}

// writeSessionError maps service errors onto HTTP statuses.
func writeSessionError(w http.ResponseWriter, player string, err error) {
	switch {
	case game.IsRejection(err):
		writeError(w, http.StatusConflict, err.Error())
	case game.IsLoadError(err):
		log.Warn().Err(err).Str("player", player).Msg("flag load failed")
		writeError(w, http.StatusBadGateway, "load_failed")
	case errors.Is(err, reveal.ErrShapeMismatch):
		log.Error().Err(err).Str("player", player).Msg("flag dimensions differ")
		writeError(w, http.StatusInternalServerError, "shape_mismatch")
	default:
		log.Error().Err(err).Str("player", player).Msg("daily session")
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}

// newRes is returned by /daily/new. Played reports a recorded result for
// today, which can predate the session (e.g. one claimed from a guest cookie).
type newRes struct {
	Played bool `json:"played"`
	stateRes
}

// handleDailyNew opens (or reuses) today's session for the caller.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	sess, err := s.svc.Open(r.Context(), player)
	if err != nil {
		writeSessionError(w, player, err)
		return
	}
	played, err := s.results.AlreadyPlayed(r.Context(), player, sess.Date.String())
	if err != nil {
		log.Warn().Err(err).Str("player", player).Msg("check daily result")
	}
	writeJSON(w, http.StatusOK, newRes{Played: played, stateRes: stateOf(sess)})
}

// -----------------------------------------------------------------------------
// /daily/guess

// guessReq is the request payload for /daily/guess. Code wins over Name.
type guessReq struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// guessRes is the response payload for /daily/guess.
type guessRes struct {
	Guess game.GuessView `json:"guess"`
	stateRes
}

// handleDailyGuess validates and applies a guess for today's session.
// - Resolves a display name to its code.
// - Rejections (game over, duplicate, unknown, busy) → 409, state unchanged.
// - Flag load failures → 502 so the client can retry.
// - Updates the player's stats when the game ends.
func (s *Server) handleDailyGuess(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)

	var p guessReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	input := strings.TrimSpace(p.Code)
	if input == "" {
		input = strings.TrimSpace(p.Name)
	}
	if input == "" {
		writeError(w, http.StatusBadRequest, "code or name required")
		return
	}

	sess, rec, err := s.svc.Guess(r.Context(), player, s.svc.Resolve(input))
	if err != nil {
		writeSessionError(w, player, err)
		return
	}

	if end := sess.End(); end != nil {
		if me := currentUser(r); me != nil {
			s.recordStats(r.Context(), me.ID, end.Won)
		}
	}
	writeJSON(w, http.StatusOK, guessRes{Guess: rec.View(), stateRes: stateOf(sess)})
}

// recordStats bumps the user's counters in a transaction.
func (s *Server) recordStats(ctx context.Context, userID string, won bool) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin stats tx")
		return
	}
	if err := bumpStats(tx, userID, won); err != nil {
		_ = tx.Rollback()
		log.Warn().Err(err).Str("user", userID).Msg("bump stats")
		return
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit stats")
	}
}

// -----------------------------------------------------------------------------
// /daily/image

// handleDailyImage renders the caller's reveal state as PNG.
func (s *Server) handleDailyImage(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	sess, err := s.svc.Open(r.Context(), player)
	if err != nil {
		writeSessionError(w, player, err)
		return
	}
	img := sess.Image(reveal.HiddenColor)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := png.Encode(w, img); err != nil {
		log.Warn().Err(err).Msg("encode png")
	}
}

// -----------------------------------------------------------------------------
// /daily/countdown

type countdownRes struct {
	Seconds int64  `json:"seconds"`
	Next    string `json:"next"`
	Today   string `json:"today"`
}

// handleCountdown reports the time left until the next flag.
func (s *Server) handleCountdown(w http.ResponseWriter, r *http.Request) {
	left := s.svc.Countdown()
	today := s.svc.Today()
	next := daily.DateOf(today.Midnight(time.UTC).AddDate(0, 0, 1))
	writeJSON(w, http.StatusOK, countdownRes{
		Seconds: int64(left / time.Second),
		Next:    next.String(),
		Today:   today.String(),
	})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.svc.Today().String()
	} else if _, err := daily.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	rows, err := s.results.Leaderboard(r.Context(), date, leaderboardLimit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if rows == nil {
		rows = []daily.LBRow{}
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
