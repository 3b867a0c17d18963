package game

import (
	"fmt"
	"strings"
)

// Player represents a player, or the absence of one when used as a cell
// value. The values are signed so that the three cells of a line sum to +3 or
// -3 exactly when one player holds the whole line.
type Player int8

const (
	NoPlayer Player = 0
	PlayerX  Player = 1
	PlayerO  Player = -1
)

// String returns the string representation of the player.
func (p Player) String() string {
	switch p {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	default:
		return " "
	}
}

// Opponent returns the opponent of the player.
func (p Player) Opponent() Player {
	return -p
}

// WinLines lists the eight index triples of a 3x3 layout that win the board:
// three rows, three columns and two diagonals. They apply to mini-boards and
// to the macro-board alike.
var WinLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Board is a 3x3 board stored row-major. It is used both for the nine
// mini-boards and for the macro-board of mini-board outcomes.
type Board [9]Player

// Winner returns the player holding a full line, or NoPlayer. NoPlayer does
// not tell a full board apart from an open one; use [Board.IsFull] for that.
func (b Board) Winner() Player {
	for _, l := range WinLines {
		switch b[l[0]] + b[l[1]] + b[l[2]] {
		case 3 * PlayerX:
			return PlayerX
		case 3 * PlayerO:
			return PlayerO
		}
	}
	return NoPlayer
}

// IsFull returns true if no cell of the board is empty.
func (b Board) IsFull() bool {
	for _, c := range b {
		if c == NoPlayer {
			return false
		}
	}
	return true
}

func (b Board) String() string {
	var s strings.Builder
	for r := range 3 {
		if r > 0 {
			s.WriteByte('\n')
		}
		for c := range 3 {
			if c > 0 {
				s.WriteByte(' ')
			}
			s.WriteString(cellString(b[r*3+c]))
		}
	}
	return s.String()
}

func cellString(p Player) string {
	if p == NoPlayer {
		return "."
	}
	return p.String()
}

// Move addresses one cell: the mini-board index and the cell index within
// it, both 0 to 8 in row-major order.
type Move struct {
	Board, Cell uint8
}

// MoveAt returns the move at the given board and cell indices.
// If either index is out of range, returns an error.
func MoveAt(board, cell int) (Move, error) {
	if board < 0 || board > 8 || cell < 0 || cell > 8 {
		return Move{}, fmt.Errorf("invalid move: board %d, cell %d", board, cell)
	}
	return Move{Board: uint8(board), Cell: uint8(cell)}, nil
}

// IsValid returns true if both indices are in range.
func (m Move) IsValid() bool {
	return m.Board < 9 && m.Cell < 9
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.Board, m.Cell)
}
