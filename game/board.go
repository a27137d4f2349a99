package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidBoard  = errors.New("board must have 9 cells of \" \", \"X\" or \"O\"")
	ErrInvalidPlayer = errors.New("player must be \"X\" or \"O\"")
)

// Player is the mark occupying a cell. Empty marks a free cell.
type Player string

const (
	Empty Player = " "
	X     Player = "X"
	O     Player = "O"
)

const Size = 9

// The 8 triples that win the game: 3 rows, 3 columns, 2 diagonals.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// ParsePlayer validates a wire symbol.
func ParsePlayer(s string) (Player, error) {
	switch p := Player(s); p {
	case X, O:
		return p, nil
	default:
		return Empty, fmt.Errorf("%w: got %q", ErrInvalidPlayer, s)
	}
}

// Opponent returns the other side. Empty has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

func (p Player) String() string {
	return string(p)
}

// Board is a 3x3 grid indexed row-major from 0 to 8. It is a value type:
// assigning a Board copies it, which is how scratch copies are made.
type Board [Size]Player

// NewBoard returns an empty board.
func NewBoard() Board {
	var b Board
	for i := range b {
		b[i] = Empty
	}
	return b
}

// ParseBoard converts wire cells into a Board.
func ParseBoard(cells []string) (Board, error) {
	var b Board
	if len(cells) != Size {
		return b, fmt.Errorf("%w: got %d cells", ErrInvalidBoard, len(cells))
	}
	for i, c := range cells {
		switch p := Player(c); p {
		case Empty, X, O:
			b[i] = p
		default:
			return b, fmt.Errorf("%w: cell %d is %q", ErrInvalidBoard, i, c)
		}
	}
	return b, nil
}

// Cells returns the wire representation of the board.
func (b Board) Cells() []string {
	cells := make([]string, Size)
	for i, p := range b {
		cells[i] = string(p)
	}
	return cells
}

// AvailableMoves returns the empty cell indices in ascending order.
func (b Board) AvailableMoves() []int {
	moves := make([]int, 0, Size)
	for i, p := range b {
		if p == Empty {
			moves = append(moves, i)
		}
	}
	return moves
}

// ApplyMove places the player's mark on the cell. It returns false without
// touching the board if the cell is out of range or occupied, or if the
// player is not X or O.
func (b *Board) ApplyMove(position int, p Player) bool {
	if position < 0 || position >= Size || b[position] != Empty {
		return false
	}
	if p != X && p != O {
		return false
	}
	b[position] = p
	return true
}

// HasWon reports whether p fully occupies one of the winning triples.
func (b Board) HasWon(p Player) bool {
	if p == Empty {
		return false
	}
	for _, line := range lines {
		if b[line[0]] == p && b[line[1]] == p && b[line[2]] == p {
			return true
		}
	}
	return false
}

// Winner returns the winning player, or Empty if nobody has won.
func (b Board) Winner() Player {
	switch {
	case b.HasWon(X):
		return X
	case b.HasWon(O):
		return O
	default:
		return Empty
	}
}

// IsFull reports whether no empty cell remains.
func (b Board) IsFull() bool {
	for _, p := range b {
		if p == Empty {
			return false
		}
	}
	return true
}

// IsTerminal reports whether the game is over by win or full board.
func (b Board) IsTerminal() bool {
	return b.Winner() != Empty || b.IsFull()
}

// StateKey encodes the cells and the player to move, e.g. "XX OO    |O".
// The same cells with a different turn give a different key.
func (b Board) StateKey(toMove Player) string {
	var sb strings.Builder
	sb.Grow(Size + 2)
	for _, p := range b {
		sb.WriteString(string(p))
	}
	sb.WriteByte('|')
	sb.WriteString(string(toMove))
	return sb.String()
}

func (b Board) String() string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			sb.WriteString("[" + string(b[row*3+col]) + "]")
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
