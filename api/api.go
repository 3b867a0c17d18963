// Package api serves games against the AI as JSON over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/twipi/utttt/game"
	"github.com/twipi/utttt/session"
)

type handler struct {
	games  *session.Store
	logger *slog.Logger
}

// NewHandler returns the routes of the game API.
func NewHandler(games *session.Store, logger *slog.Logger) http.Handler {
	h := &handler{games: games, logger: logger}

	r := chi.NewRouter()
	r.Post("/games", h.create)
	r.Route("/games/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Delete("/", h.delete)
		r.Post("/moves", h.play)
		r.Post("/undo", h.undo)
	})
	return r
}

type createRequest struct {
	Difficulty string `json:"difficulty"`
}

type moveRequest struct {
	Board *int `json:"board"`
	Cell  *int `json:"cell"`
}

type moveView struct {
	Board int `json:"board"`
	Cell  int `json:"cell"`
}

type gameView struct {
	ID         string    `json:"id"`
	Difficulty string    `json:"difficulty"`
	Boards     [9][9]int `json:"boards"`
	Macro      [9]int    `json:"macro"`
	Turn       string    `json:"turn"`
	Forced     *int      `json:"forced"`
	Playable   []int     `json:"playable"`
	Over       bool      `json:"over"`
	Result     string    `json:"result,omitempty"`
	AIMove     *moveView `json:"ai_move,omitempty"`
	AIScore    *float64  `json:"ai_score,omitempty"`
}

type errorView struct {
	Error string `json:"error"`
}

func newGameView(id string, v session.View) gameView {
	g := v.Game
	gv := gameView{
		ID:         id,
		Difficulty: string(v.Difficulty),
		Turn:       g.Turn().String(),
		Over:       g.Over(),
		Playable:   []int{},
	}

	for b, board := range g.Boards() {
		for c, p := range board {
			gv.Boards[b][c] = int(p)
		}
	}
	for b, p := range g.Macro() {
		gv.Macro[b] = int(p)
	}

	if f, ok := g.Forced(); ok {
		gv.Forced = &f
	}

	if winner, ended := g.GameState(); ended {
		gv.Result = "tie"
		if winner != game.NoPlayer {
			gv.Result = winner.String()
		}
	} else {
		gv.Playable = g.PlayableBoards()
	}

	if v.Last != nil && v.Last.AIMoved {
		gv.AIMove = &moveView{Board: int(v.Last.AI.Board), Cell: int(v.Last.AI.Cell)}
		score := v.Last.Score
		gv.AIScore = &score
	}
	return gv
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	diff, err := session.ParseDifficulty(req.Difficulty)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.NewString()
	s, _ := h.games.Start(id, diff)
	h.writeJSON(w, http.StatusCreated, newGameView(id, s.Snapshot()))
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.load(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, newGameView(id, s.Snapshot()))
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok || !h.games.Delete(id) {
		h.writeError(w, http.StatusNotFound, session.ErrNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) play(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.load(w, r)
	if !ok {
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Board == nil || req.Cell == nil {
		h.writeError(w, http.StatusBadRequest, "expected a board and a cell")
		return
	}
	move, err := game.MoveAt(*req.Board, *req.Cell)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	out, err := s.Play(move)
	switch {
	case errors.Is(err, session.ErrIllegalMove):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, session.ErrGameOver), errors.Is(err, session.ErrNotYourTurn):
		h.writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Error(
			"failed to play move",
			"id", id,
			"err", err)
		h.writeError(w, http.StatusInternalServerError, "failed to play move")
		return
	}

	h.logger.Debug(
		"played move",
		"id", id,
		"move", out.Human,
		"ai_move", out.AI,
		"ai_moved", out.AIMoved,
		"nodes", out.Nodes)

	h.writeJSON(w, http.StatusOK, newGameView(id, s.Snapshot()))
}

func (h *handler) undo(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.load(w, r)
	if !ok {
		return
	}
	if !s.Undo() {
		h.writeError(w, http.StatusConflict, "nothing to undo")
		return
	}
	h.writeJSON(w, http.StatusOK, newGameView(id, s.Snapshot()))
}

func (h *handler) load(w http.ResponseWriter, r *http.Request) (string, *session.Session, bool) {
	id, ok := gameID(r)
	if !ok {
		h.writeError(w, http.StatusNotFound, session.ErrNotFound.Error())
		return id, nil, false
	}
	s, ok := h.games.Load(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, session.ErrNotFound.Error())
		return id, nil, false
	}
	return id, s, true
}

// gameID returns the game ID of the request. Games created over the API are
// keyed by UUID, so any other ID belongs to another frontend and is refused.
func gameID(r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return id, false
	}
	return id, true
}

func (h *handler) writeError(w http.ResponseWriter, code int, msg string) {
	h.writeJSON(w, code, errorView{Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error(
			"failed to write response",
			"err", err)
	}
}
