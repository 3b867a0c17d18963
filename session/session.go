// Package session pairs a human with a computer opponent over one game of
// Ultimate Tic-Tac-Toe.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/twipi/utttt/game"
)

// Errors returned by session operations.
var (
	ErrNotFound    = errors.New("game not found")
	ErrGameOver    = errors.New("game is over")
	ErrNotYourTurn = errors.New("not your turn")
	ErrIllegalMove = errors.New("illegal move")
)

const (
	// Human is the player the human plays. X moves first.
	Human = game.PlayerX
	// Computer is the player the AI plays.
	Computer = game.PlayerO
)

// Difficulty selects how far ahead the computer searches.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// DefaultDifficulty is used when no difficulty is given.
const DefaultDifficulty = Easy

// ParseDifficulty parses a difficulty name. An empty name is
// DefaultDifficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DefaultDifficulty, nil
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// Depths maps each difficulty to a search depth.
type Depths struct {
	Easy   int `yaml:"easy"`
	Medium int `yaml:"medium"`
	Hard   int `yaml:"hard"`
}

// DefaultDepths returns the default search depths.
func DefaultDepths() Depths {
	return Depths{Easy: 2, Medium: 4, Hard: 6}
}

// For returns the search depth for d.
func (d Depths) For(diff Difficulty) int {
	switch diff {
	case Medium:
		return d.Medium
	case Hard:
		return d.Hard
	default:
		return d.Easy
	}
}

// Outcome describes one turn of play.
type Outcome struct {
	Human game.Move
	// AI is the computer's reply. It is only meaningful if AIMoved is true.
	AI      game.Move
	AIMoved bool
	// Score and Nodes come from the computer's search.
	Score float64
	Nodes int
}

// Session is a game between a human and the computer. It is safe for
// concurrent use.
type Session struct {
	mu         sync.Mutex
	game       *game.Game
	ai         *game.AI
	depths     Depths
	difficulty Difficulty
	startedAt  time.Time
	last       *Outcome
}

// New creates a session with a new game.
func New(diff Difficulty, depths Depths, w game.Weights, now time.Time) *Session {
	g := game.NewGame()
	return &Session{
		game:       g,
		ai:         game.NewAI(g, Computer, depths.For(diff), w),
		depths:     depths,
		difficulty: diff,
		startedAt:  now,
	}
}

// Reset starts a new game in place at the given difficulty.
func (s *Session) Reset(diff Difficulty, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.game.Reset()
	s.ai.SetDepth(s.depths.For(diff))
	s.difficulty = diff
	s.startedAt = now
	s.last = nil
}

// StartedAt returns the time the current game started.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Play makes the human's move m and lets the computer reply unless the move
// ended the game.
func (s *Session) Play(m game.Move) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.Over() {
		return Outcome{}, ErrGameOver
	}
	if s.game.Turn() != Human {
		return Outcome{}, ErrNotYourTurn
	}
	if !s.game.MakeMove(m) {
		return Outcome{}, fmt.Errorf("%w: board %d, cell %d", ErrIllegalMove, m.Board, m.Cell)
	}

	out := Outcome{Human: m}
	if r, ok := s.ai.MakeMove(); ok {
		out.AI = r.Move
		out.AIMoved = true
		out.Score = r.Score
		out.Nodes = r.Nodes
	}
	s.last = &out
	return out, nil
}

// Undo takes back the human's last move together with the computer's reply.
// Returns false if the human has not moved yet.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.Moves() == 0 {
		return false
	}
	s.game.UndoMove()
	for s.game.Turn() != Human && s.game.Moves() > 0 {
		s.game.UndoMove()
	}
	// Undoing always leaves the game in progress.
	s.game.CheckTerminal()
	s.last = nil
	return true
}

// View is a read-only copy of a session.
type View struct {
	Game       *game.Game
	Difficulty Difficulty
	StartedAt  time.Time
	// Last is the most recent turn played, or nil after a reset or undo.
	Last *Outcome
}

// Snapshot returns a copy of the session that is safe to read while play
// continues.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Game:       s.game.Clone(),
		Difficulty: s.difficulty,
		StartedAt:  s.startedAt,
	}
	if s.last != nil {
		last := *s.last
		v.Last = &last
	}
	return v
}
