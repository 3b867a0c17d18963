// Package game implements Ultimate Tic-Tac-Toe and a computer opponent.
//
// A game is played on nine mini-boards laid out as a 3x3 grid. Winning a
// mini-board claims the matching cell of the macro-board, and three claimed
// mini-boards in a line win the game. The cell a player picks decides the
// mini-board the opponent must play in next.
package game

import (
	"fmt"
	"strings"
)

// NoForce is the forced-board value meaning the next player may move in any
// playable mini-board.
const NoForce = -1

// undoRecord holds what is needed to reverse one ApplyMove.
type undoRecord struct {
	move   Move
	player Player
	forced int
	macro  Player
}

// Game represents a game of Ultimate Tic-Tac-Toe.
//
// A Game is mutated in place and must not be used by more than one goroutine
// at a time. Use [Game.Clone] to hand an independent copy to another one.
type Game struct {
	boards  [9]Board
	macro   Board
	turn    Player
	forced  int
	over    bool
	result  Player
	history []undoRecord
}

// NewGame creates a new game of Ultimate Tic-Tac-Toe. X moves first and may
// play anywhere.
func NewGame() *Game {
	g := &Game{}
	g.Reset()
	return g
}

// Reset reinitializes the game in place to the state returned by [NewGame].
func (g *Game) Reset() {
	g.boards = [9]Board{}
	g.macro = Board{}
	g.turn = PlayerX
	g.forced = NoForce
	g.over = false
	g.result = NoPlayer
	g.history = g.history[:0]
}

// Board returns a copy of mini-board i.
func (g *Game) Board(i int) Board {
	return g.boards[i]
}

// Boards returns a copy of all nine mini-boards.
func (g *Game) Boards() [9]Board {
	return g.boards
}

// Macro returns a copy of the macro-board. Cell i holds the player that
// claimed mini-board i, or NoPlayer.
func (g *Game) Macro() Board {
	return g.macro
}

// Turn returns the player to move.
func (g *Game) Turn() Player {
	return g.turn
}

// Forced returns the mini-board the player to move must play in. If the
// player may move anywhere, returns NoForce and false.
func (g *Game) Forced() (int, bool) {
	return g.forced, g.forced != NoForce
}

// Over returns true once terminal detection has found the game over.
func (g *Game) Over() bool {
	return g.over
}

// Result returns the winner of a finished game, or NoPlayer for a tie or a
// game still in progress.
func (g *Game) Result() Player {
	return g.result
}

// GameState returns the terminal status recorded by [Game.CheckTerminal].
// If the game is over, returns the winner and true, or NoPlayer and true if
// it's a tie. Otherwise, returns NoPlayer and false.
func (g *Game) GameState() (winner Player, ended bool) {
	return g.result, g.over
}

// Moves returns the number of moves that can be undone.
func (g *Game) Moves() int {
	return len(g.history)
}

// LastMove returns the most recently applied move, if any.
func (g *Game) LastMove() (Move, bool) {
	if len(g.history) == 0 {
		return Move{}, false
	}
	return g.history[len(g.history)-1].move, true
}

// Clone creates a deep copy of the game.
func (g *Game) Clone() *Game {
	g2 := *g
	g2.history = append([]undoRecord(nil), g.history...)
	return &g2
}

func (g *Game) String() string {
	var s strings.Builder
	for r := range 9 {
		if r == 3 || r == 6 {
			s.WriteString("------+-------+------\n")
		}
		for c := range 9 {
			if c == 3 || c == 6 {
				s.WriteString(" |")
			}
			if c > 0 {
				s.WriteByte(' ')
			}
			b := (r/3)*3 + c/3
			s.WriteString(cellString(g.boards[b][(r%3)*3+c%3]))
		}
		s.WriteByte('\n')
	}

	fmt.Fprintf(&s, "turn %s", g.turn)
	if g.forced != NoForce {
		fmt.Fprintf(&s, ", forced board %d", g.forced)
	}
	if g.over {
		if g.result == NoPlayer {
			s.WriteString(", tie")
		} else {
			fmt.Fprintf(&s, ", %s wins", g.result)
		}
	}
	return s.String()
}
