package game

import "fmt"

// BoardDone returns true if mini-board i was claimed or has no empty cell
// left. Done boards take no further moves.
func (g *Game) BoardDone(i int) bool {
	return g.macro[i] != NoPlayer || g.boards[i].IsFull()
}

func (g *Game) allBoardsDone() bool {
	for i := range g.boards {
		if !g.BoardDone(i) {
			return false
		}
	}
	return true
}

// PlayableBoards returns the mini-boards the player to move may play in, in
// ascending order. A forced board that became done no longer binds, and the
// player may then move in any board that is not done.
func (g *Game) PlayableBoards() []int {
	if g.forced != NoForce && !g.BoardDone(g.forced) {
		return []int{g.forced}
	}
	boards := make([]int, 0, 9)
	for i := range g.boards {
		if !g.BoardDone(i) {
			boards = append(boards, i)
		}
	}
	return boards
}

// LegalMoves returns every legal move for the player to move, ordered by
// board and then by cell.
func (g *Game) LegalMoves() []Move {
	var moves []Move
	for _, b := range g.PlayableBoards() {
		for c, v := range g.boards[b] {
			if v == NoPlayer {
				moves = append(moves, Move{Board: uint8(b), Cell: uint8(c)})
			}
		}
	}
	return moves
}

// IsLegal returns true if the player to move may play m. A claimed board is
// closed even if some of its cells are still empty.
//
// IsLegal does not look at the terminal status; callers check [Game.Over]
// first.
func (g *Game) IsLegal(m Move) bool {
	if !m.IsValid() {
		return false
	}
	b := int(m.Board)
	if g.forced != NoForce && b != g.forced && !g.BoardDone(g.forced) {
		return false
	}
	if g.macro[b] != NoPlayer {
		return false
	}
	return g.boards[b][m.Cell] == NoPlayer
}

// ApplyMove plays m for p and hands the turn to the opponent. It claims the
// mini-board if the move completes a line in it, and points the forced board
// at the mini-board matching the cell played unless that board is done.
//
// ApplyMove does not check legality or the terminal status: callers check
// [Game.IsLegal] first and run [Game.CheckTerminal] afterwards. It panics if
// p is not the player to move.
func (g *Game) ApplyMove(m Move, p Player) {
	if p != g.turn {
		panic(fmt.Sprintf("game: move %v applied for %v on %v's turn", m, p, g.turn))
	}

	b := int(m.Board)
	g.history = append(g.history, undoRecord{
		move:   m,
		player: g.turn,
		forced: g.forced,
		macro:  g.macro[b],
	})

	g.boards[b][m.Cell] = p

	// First win stands.
	if g.macro[b] == NoPlayer {
		if w := g.boards[b].Winner(); w != NoPlayer {
			g.macro[b] = w
		}
	}

	if next := int(m.Cell); !g.BoardDone(next) {
		g.forced = next
	} else {
		g.forced = NoForce
	}

	g.turn = -g.turn
}

// UndoMove reverses the most recent ApplyMove and returns true. If there is
// nothing to undo, it does nothing and returns false.
//
// UndoMove always leaves the game in progress, even when undoing out of a
// finished position. Callers that depend on the terminal status must run
// [Game.CheckTerminal] again after undoing.
func (g *Game) UndoMove() bool {
	if len(g.history) == 0 {
		return false
	}

	rec := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]

	g.boards[rec.move.Board][rec.move.Cell] = NoPlayer
	g.macro[rec.move.Board] = rec.macro
	g.forced = rec.forced
	g.turn = rec.player
	g.over = false
	g.result = NoPlayer
	return true
}

// CheckTerminal marks the game over if the macro-board has a winner or every
// mini-board is done. Once the game is marked over, later calls leave the
// result untouched.
func (g *Game) CheckTerminal() {
	if g.over {
		return
	}
	if w := g.macro.Winner(); w != NoPlayer {
		g.over = true
		g.result = w
		return
	}
	if g.allBoardsDone() {
		g.over = true
		g.result = NoPlayer
	}
}

// MakeMove plays m for the player to move and runs terminal detection.
// Returns false, leaving the game untouched, if the game is over or the move
// is illegal.
func (g *Game) MakeMove(m Move) bool {
	if g.over || !g.IsLegal(m) {
		return false
	}
	g.ApplyMove(m, g.turn)
	g.CheckTerminal()
	return true
}
