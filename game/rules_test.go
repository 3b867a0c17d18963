package game

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"
)

// snapshot captures every observable field of a game.
type snapshot struct {
	boards [9]Board
	macro  Board
	turn   Player
	forced int
	over   bool
	result Player
	moves  int
}

func snap(g *Game) snapshot {
	return snapshot{
		boards: g.boards,
		macro:  g.macro,
		turn:   g.turn,
		forced: g.forced,
		over:   g.over,
		result: g.result,
		moves:  len(g.history),
	}
}

// applyMoves applies moves for alternating players, starting with the player
// to move, without checking legality.
func applyMoves(t *testing.T, g *Game, moves ...Move) {
	t.Helper()
	for _, m := range moves {
		g.ApplyMove(m, g.Turn())
	}
}

func TestNewGame(t *testing.T) {
	g := NewGame()
	if g.Turn() != PlayerX {
		t.Errorf("turn = %v, want X", g.Turn())
	}
	if f, ok := g.Forced(); ok {
		t.Errorf("forced = %d, want free", f)
	}
	if winner, ended := g.GameState(); ended || winner != NoPlayer {
		t.Errorf("game state = (%v, %v), want in progress", winner, ended)
	}
	if n := len(g.PlayableBoards()); n != 9 {
		t.Errorf("playable boards = %d, want 9", n)
	}
	if n := len(g.LegalMoves()); n != 81 {
		t.Errorf("legal moves = %d, want 81", n)
	}
	if g.UndoMove() {
		t.Error("undo on a new game should do nothing")
	}
	if s := snap(g); s != snap(NewGame()) {
		t.Errorf("undo on a new game changed it: %+v", s)
	}
}

func TestReset(t *testing.T) {
	g := NewGame()
	applyMoves(t, g, Move{4, 4}, Move{4, 0}, Move{0, 8})
	g.Reset()
	if s := snap(g); s != snap(NewGame()) {
		t.Errorf("reset game differs from a new game:\n%v", g)
	}
}

func TestApplyMoveForcesBoard(t *testing.T) {
	g := NewGame()
	g.ApplyMove(Move{Board: 4, Cell: 4}, PlayerX)

	if f, ok := g.Forced(); !ok || f != 4 {
		t.Errorf("forced = (%d, %v), want (4, true)", f, ok)
	}
	if g.Turn() != PlayerO {
		t.Errorf("turn = %v, want O", g.Turn())
	}
	if got := g.PlayableBoards(); !slices.Equal(got, []int{4}) {
		t.Errorf("playable boards = %v, want [4]", got)
	}
	if m, ok := g.LastMove(); !ok || m != (Move{4, 4}) {
		t.Errorf("last move = (%v, %v), want (4,4)", m, ok)
	}
}

func TestClaimClosesBoard(t *testing.T) {
	g := NewGame()
	// X takes the diagonal of board 0, finishing on cell 0 so that the
	// forced board points back at the claimed board.
	applyMoves(t, g,
		Move{0, 4}, Move{8, 8},
		Move{0, 8}, Move{8, 7},
		Move{0, 0},
	)
	t.Log(g)

	if g.Macro()[0] != PlayerX {
		t.Fatalf("macro[0] = %v, want X", g.Macro()[0])
	}
	if !g.BoardDone(0) {
		t.Error("claimed board should be done")
	}
	if f, ok := g.Forced(); ok {
		t.Errorf("forced = %d, want free", f)
	}
	if got := g.PlayableBoards(); slices.Contains(got, 0) || len(got) != 8 {
		t.Errorf("playable boards = %v, want every board but 0", got)
	}
	if g.IsLegal(Move{0, 1}) {
		t.Error("empty cell of a claimed board should be illegal")
	}
}

func TestForcedIntoFullBoardIsFree(t *testing.T) {
	g := NewGame()
	g.boards[3] = parseBoard(t, "XOXXOOOXX")

	g.ApplyMove(Move{Board: 0, Cell: 3}, PlayerX)

	if f, ok := g.Forced(); ok {
		t.Fatalf("forced = %d, want free", f)
	}
	want := []int{0, 1, 2, 4, 5, 6, 7, 8}
	if got := g.PlayableBoards(); !slices.Equal(got, want) {
		t.Errorf("playable boards = %v, want %v", got, want)
	}
	if g.Macro()[3] != NoPlayer {
		t.Errorf("full board without a line should stay unclaimed")
	}
}

func TestPlayableBoardsLiftsClosedForce(t *testing.T) {
	g := NewGame()
	g.forced = 2
	g.macro[2] = PlayerO
	g.boards[2] = parseBoard(t, "OOO......")

	want := []int{0, 1, 3, 4, 5, 6, 7, 8}
	if got := g.PlayableBoards(); !slices.Equal(got, want) {
		t.Errorf("playable boards = %v, want %v", got, want)
	}
	if !g.IsLegal(Move{7, 0}) {
		t.Error("move outside a closed forced board should be legal")
	}
}

func TestIsLegal(t *testing.T) {
	g := NewGame()
	applyMoves(t, g, Move{1, 5})
	// O is forced into board 5. Board 6 is claimed by X.
	g.macro[6] = PlayerX
	g.boards[6] = parseBoard(t, "XXX......")

	tests := []struct {
		move Move
		want bool
	}{
		{Move{5, 0}, true},
		{Move{5, 8}, true},
		{Move{4, 0}, false},
		{Move{1, 0}, false},
		{Move{6, 4}, false},
		{Move{9, 0}, false},
		{Move{5, 9}, false},
	}
	for _, test := range tests {
		t.Run(test.move.String(), func(t *testing.T) {
			if legal := g.IsLegal(test.move); legal != test.want {
				t.Errorf("legal = %v, want %v", legal, test.want)
			}
		})
	}

	g.forced = NoForce
	if !g.IsLegal(Move{4, 0}) {
		t.Error("open board should be legal without a forced board")
	}
	if g.IsLegal(Move{1, 5}) {
		t.Error("occupied cell should be illegal")
	}
	if g.IsLegal(Move{6, 4}) {
		t.Error("claimed board should be illegal without a forced board")
	}
}

func TestApplyMoveWrongPlayerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewGame().ApplyMove(Move{0, 0}, PlayerO)
}

func TestApplyUndoRoundTrip(t *testing.T) {
	for seed := range int64(8) {
		t.Run(fmt.Sprintf("seed%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			g := NewGame()

			for !g.Over() {
				moves := g.LegalMoves()
				if len(moves) == 0 {
					t.Fatalf("no legal moves in a game in progress:\n%v", g)
				}
				m := moves[rng.Intn(len(moves))]
				if !g.IsLegal(m) {
					t.Fatalf("generated move %v is illegal:\n%v", m, g)
				}

				before := snap(g)
				g.ApplyMove(m, g.Turn())
				g.UndoMove()
				if after := snap(g); after != before {
					t.Fatalf("undo of %v did not restore the game:\nbefore %+v\nafter  %+v", m, before, after)
				}

				g.ApplyMove(m, g.Turn())
				g.CheckTerminal()
			}
			t.Log(g)

			for g.UndoMove() {
			}
			if s := snap(g); s != snap(NewGame()) {
				t.Errorf("undoing every move did not return to a new game:\n%v", g)
			}
		})
	}
}

// xWinsInOne sets up X with boards 0 and 1 claimed and two cells of
// board 2's top row, X to move in board 2.
func xWinsInOne(t *testing.T) *Game {
	t.Helper()
	g := NewGame()
	g.boards[0] = parseBoard(t, "XXX.O.O..")
	g.boards[1] = parseBoard(t, "XXXO..O..")
	g.boards[2] = parseBoard(t, "XX..OO...")
	g.macro[0] = PlayerX
	g.macro[1] = PlayerX
	g.forced = 2
	return g
}

func TestCheckTerminal(t *testing.T) {
	t.Run("win", func(t *testing.T) {
		g := xWinsInOne(t)
		if !g.MakeMove(Move{2, 2}) {
			t.Fatal("winning move rejected")
		}
		if winner, ended := g.GameState(); !ended || winner != PlayerX {
			t.Fatalf("game state = (%v, %v), want (X, true)", winner, ended)
		}
		if g.MakeMove(Move{3, 0}) {
			t.Error("move after the game is over should be rejected")
		}

		// Terminal status is sticky.
		g.macro = parseBoard(t, "OOO......")
		g.CheckTerminal()
		if g.Result() != PlayerX {
			t.Errorf("result = %v after a second check, want X", g.Result())
		}
	})

	t.Run("undo clears", func(t *testing.T) {
		g := xWinsInOne(t)
		g.MakeMove(Move{2, 2})
		g.UndoMove()
		if winner, ended := g.GameState(); ended || winner != NoPlayer {
			t.Fatalf("game state after undo = (%v, %v), want in progress", winner, ended)
		}
		g.CheckTerminal()
		if g.Over() {
			t.Error("position before the winning move is not over")
		}
	})

	t.Run("tie", func(t *testing.T) {
		g := NewGame()
		for i := range g.boards {
			g.boards[i] = parseBoard(t, "XOXXOOOXX")
		}
		g.CheckTerminal()
		if winner, ended := g.GameState(); !ended || winner != NoPlayer {
			t.Fatalf("game state = (%v, %v), want (none, true)", winner, ended)
		}
	})

	t.Run("in progress", func(t *testing.T) {
		g := NewGame()
		applyMoves(t, g, Move{4, 4})
		g.CheckTerminal()
		if g.Over() {
			t.Error("game should be in progress")
		}
	})
}

func TestClone(t *testing.T) {
	g := NewGame()
	applyMoves(t, g, Move{4, 4}, Move{4, 0})

	c := g.Clone()
	c.UndoMove()
	c.ApplyMove(Move{4, 8}, PlayerO)

	if g.Board(4)[0] != PlayerO || g.Board(4)[8] != NoPlayer {
		t.Errorf("clone shares state with the original:\n%v", g)
	}
	if g.Moves() != 2 || c.Moves() != 2 {
		t.Errorf("moves = %d and %d, want 2 and 2", g.Moves(), c.Moves())
	}
}
