package game

import (
	"math"
)

// Result is the outcome of a search.
type Result struct {
	// Move is the best move found. It is only meaningful if HasMove is true.
	Move    Move
	HasMove bool
	// Score is the minimax value of the position for the evaluator's side.
	Score float64
	// Nodes is the number of positions visited.
	Nodes int
}

// BestMove searches g to the given depth with minimax and alpha-beta pruning
// and returns the best move for the player to move. The evaluator's side
// maximizes the score and its opponent minimizes it.
//
// The game is mutated during the search and restored before BestMove
// returns. Moves are tried by board and then by cell, and the first move
// reaching the best score wins.
func BestMove(g *Game, e *Evaluator, depth int) Result {
	s := searcher{game: g, eval: e}
	move, score, ok := s.search(depth, math.Inf(-1), math.Inf(1))
	return Result{
		Move:    move,
		HasMove: ok,
		Score:   score,
		Nodes:   s.nodes,
	}
}

type searcher struct {
	game  *Game
	eval  *Evaluator
	nodes int
}

func (s *searcher) search(depth int, alpha, beta float64) (Move, float64, bool) {
	s.nodes++

	if score, ok := s.eval.TerminalScore(s.game); ok {
		return Move{}, score, false
	}
	if depth <= 0 {
		return Move{}, s.eval.Evaluate(s.game), false
	}

	moves := s.game.LegalMoves()
	if len(moves) == 0 {
		return Move{}, s.eval.Evaluate(s.game), false
	}

	maximizing := s.game.Turn() == s.eval.Side

	var bestMove Move
	var found bool
	best := Sentinel
	if maximizing {
		best = -Sentinel
	}

	for _, m := range moves {
		s.game.ApplyMove(m, s.game.Turn())
		_, score, _ := s.search(depth-1, alpha, beta)
		s.game.UndoMove()

		// The first move is always kept so a lost position still has a move.
		if maximizing {
			if !found || score > best {
				best, bestMove, found = score, m, true
			}
			alpha = math.Max(alpha, best)
		} else {
			if !found || score < best {
				best, bestMove, found = score, m, true
			}
			beta = math.Min(beta, best)
		}

		if beta <= alpha {
			break
		}
	}

	return bestMove, best, found
}

// AI represents a computer player.
// The AI is implemented using the minimax algorithm with alpha-beta pruning.
type AI struct {
	game  *Game
	eval  *Evaluator
	depth int
}

// NewAI creates a new AI playing p in g, searching depth plies ahead.
func NewAI(g *Game, p Player, depth int, w Weights) *AI {
	return &AI{
		game:  g,
		eval:  NewEvaluator(p, w),
		depth: depth,
	}
}

// Player returns the player the AI plays.
func (a *AI) Player() Player {
	return a.eval.Side
}

// Depth returns the search depth.
func (a *AI) Depth() int {
	return a.depth
}

// SetDepth changes the search depth.
func (a *AI) SetDepth(depth int) {
	a.depth = depth
}

// NextMove returns the result of searching for the AI's next move.
// If the game is over, it is not the AI's turn or there is no move to make,
// returns false.
func (a *AI) NextMove() (Result, bool) {
	if a.game.Over() || a.game.Turn() != a.eval.Side {
		return Result{}, false
	}
	r := BestMove(a.game, a.eval, a.depth)
	return r, r.HasMove
}

// MakeMove makes the next move for the AI.
// Returns the search result and true if a move was made.
func (a *AI) MakeMove() (Result, bool) {
	r, ok := a.NextMove()
	if !ok {
		return r, false
	}
	return r, a.game.MakeMove(r.Move)
}
