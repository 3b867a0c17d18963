package game

// Sentinel is the score of a won or lost game. It dominates every heuristic
// term.
const Sentinel = 1e9

// Weights are the tunable terms of the heuristic evaluation.
type Weights struct {
	// Macro-board terms.
	Claim float64 `yaml:"claim"`
	Two   float64 `yaml:"two"`
	One   float64 `yaml:"one"`

	// Mini-board terms.
	MicroTwo  float64 `yaml:"micro_two"`
	MicroOne  float64 `yaml:"micro_one"`
	MicroFork float64 `yaml:"micro_fork"`
	Center    float64 `yaml:"center"`
	Corner    float64 `yaml:"corner"`

	// ForcedMultiplier scales the score of the mini-board the player to move
	// is forced into.
	ForcedMultiplier float64 `yaml:"forced_multiplier"`
	// MicroScale scales the sum of all mini-board scores against the
	// macro-board score.
	MicroScale float64 `yaml:"micro_scale"`
}

// DefaultWeights returns the default heuristic weights.
func DefaultWeights() Weights {
	return Weights{
		Claim:            30,
		Two:              10,
		One:              2,
		MicroTwo:         3,
		MicroOne:         1,
		MicroFork:        8,
		Center:           2,
		Corner:           1,
		ForcedMultiplier: 1.5,
		MicroScale:       1,
	}
}

// Evaluator scores positions for one side: positive scores favor Side and
// negative scores favor its opponent.
type Evaluator struct {
	Side    Player
	Weights Weights
}

// NewEvaluator creates an evaluator scoring for side.
func NewEvaluator(side Player, w Weights) *Evaluator {
	return &Evaluator{Side: side, Weights: w}
}

// TerminalScore returns the score of a finished position and true. A win for
// Side scores +Sentinel, a loss -Sentinel and a tie 0. If the position is not
// finished, returns 0 and false.
//
// The position is read from the boards, not from the terminal status, so it
// works inside a search where moves are applied without CheckTerminal.
func (e *Evaluator) TerminalScore(g *Game) (float64, bool) {
	switch g.macro.Winner() {
	case e.Side:
		return Sentinel, true
	case e.Side.Opponent():
		return -Sentinel, true
	}
	if g.allBoardsDone() {
		return 0, true
	}
	return 0, false
}

// Evaluate returns the score of the position.
func (e *Evaluator) Evaluate(g *Game) float64 {
	if score, ok := e.TerminalScore(g); ok {
		return score
	}
	return e.MacroScore(g) + e.Weights.MicroScale*e.MicroTotal(g)
}

// MacroScore scores the macro-board from claimed mini-boards and open lines.
func (e *Evaluator) MacroScore(g *Game) float64 {
	var claimed int
	for _, v := range g.macro {
		switch v {
		case e.Side:
			claimed++
		case e.Side.Opponent():
			claimed--
		}
	}

	l := countLines(g.macro, e.Side)
	w := e.Weights
	return w.Claim*float64(claimed) +
		w.Two*float64(l.twos) +
		w.One*float64(l.ones)
}

// MicroTotal sums [Evaluator.MicroScore] over the mini-boards that are not
// done, weighting the forced board by ForcedMultiplier.
func (e *Evaluator) MicroTotal(g *Game) float64 {
	var total float64
	for i, b := range g.boards {
		if g.BoardDone(i) {
			continue
		}
		m := e.MicroScore(b)
		if i == g.forced {
			m *= e.Weights.ForcedMultiplier
		}
		total += m
	}
	return total
}

// MicroScore scores one mini-board from open lines, fork chances and the
// center and corner cells held.
func (e *Evaluator) MicroScore(b Board) float64 {
	side, opp := e.Side, e.Side.Opponent()
	l := countLines(b, side)

	var forks int
	if hasFork(&b, side) {
		forks++
	}
	if hasFork(&b, opp) {
		forks--
	}

	var pos float64
	switch b[4] {
	case side:
		pos += e.Weights.Center
	case opp:
		pos -= e.Weights.Center
	}
	for _, i := range [...]int{0, 2, 6, 8} {
		switch b[i] {
		case side:
			pos += e.Weights.Corner
		case opp:
			pos -= e.Weights.Corner
		}
	}

	w := e.Weights
	return w.MicroTwo*float64(l.twos) +
		w.MicroOne*float64(l.ones) +
		w.MicroFork*float64(forks) +
		pos
}

// lineCounts holds differences between side and opponent line counts.
type lineCounts struct {
	twos int // lines with two of a side's marks and one empty cell
	ones int // lines with one of a side's marks and two empty cells
}

// countLines counts open lines of b for side minus those of its opponent.
// Lines holding marks of both players are blocked and count for neither.
func countLines(b Board, side Player) lineCounts {
	var c lineCounts
	for _, l := range WinLines {
		var own, other, empty int
		for _, i := range l {
			switch b[i] {
			case NoPlayer:
				empty++
			case side:
				own++
			default:
				other++
			}
		}
		switch {
		case own > 0 && other > 0:
			// blocked
		case own == 2 && empty == 1:
			c.twos++
		case other == 2 && empty == 1:
			c.twos--
		case own == 1 && empty == 2:
			c.ones++
		case other == 1 && empty == 2:
			c.ones--
		}
	}
	return c
}

// hasFork returns true if p has a move on b that opens two lines at once.
// b is restored before returning.
func hasFork(b *Board, p Player) bool {
	for i := range b {
		if b[i] == NoPlayer && forksAt(b, i, p) {
			return true
		}
	}
	return false
}

func forksAt(b *Board, i int, p Player) bool {
	b[i] = p
	defer func() { b[i] = NoPlayer }()

	var open int
	for _, l := range WinLines {
		if isOpenTwo(b, l, p) {
			open++
			if open >= 2 {
				return true
			}
		}
	}
	return false
}

func isOpenTwo(b *Board, l [3]int, p Player) bool {
	var own, empty int
	for _, i := range l {
		switch b[i] {
		case p:
			own++
		case NoPlayer:
			empty++
		}
	}
	return own == 2 && empty == 1
}
