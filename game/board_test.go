package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustBoard(t *testing.T, cells ...string) Board {
	t.Helper()
	b, err := ParseBoard(cells)
	require.NoError(t, err)
	return b
}

func TestBoardWinner(t *testing.T) {
	t.Run("every winning triple is detected for both players", func(t *testing.T) {
		for _, p := range []Player{X, O} {
			for _, line := range lines {
				b := NewBoard()
				for _, idx := range line {
					b[idx] = p
				}
				require.Equal(t, p, b.Winner(), "Triple %v should win for %s", line, p)
				require.True(t, b.IsTerminal(), "A won board should be terminal")
			}
		}
	})

	t.Run("two in a row is not a win", func(t *testing.T) {
		b := mustBoard(t, "X", "X", " ", "O", "O", " ", " ", " ", " ")

		require.Equal(t, Empty, b.Winner(), "No triple is complete")
		require.False(t, b.IsTerminal(), "Board with empty cells and no winner is not terminal")
	})

	t.Run("full board without a triple is a draw", func(t *testing.T) {
		b := mustBoard(t, "X", "O", "X", "X", "O", "O", "O", "X", "X")

		require.Equal(t, Empty, b.Winner(), "Draw board has no winner")
		require.True(t, b.IsFull(), "Draw board is full")
		require.True(t, b.IsTerminal(), "Full board is terminal")
	})

	t.Run("mixed triple is not a win", func(t *testing.T) {
		b := mustBoard(t, "X", "O", "X", " ", " ", " ", " ", " ", " ")

		require.False(t, b.HasWon(X), "Row with mixed marks should not win")
		require.False(t, b.HasWon(O), "Row with mixed marks should not win")
		require.False(t, b.HasWon(Empty), "Empty never wins")
	})
}

func TestBoardApplyMove(t *testing.T) {
	t.Run("placing on an empty cell", func(t *testing.T) {
		b := NewBoard()

		require.True(t, b.ApplyMove(4, X), "Empty cell should accept a move")
		require.Equal(t, X, b[4], "Cell should hold the mark")
		require.NotContains(t, b.AvailableMoves(), 4, "Occupied cell is no longer available")
	})

	t.Run("occupied cell is rejected without mutation", func(t *testing.T) {
		b := NewBoard()
		b.ApplyMove(4, X)
		before := b

		require.False(t, b.ApplyMove(4, O), "Occupied cell should reject a move")
		require.Equal(t, before, b, "Board should not change")
	})

	t.Run("out of range and empty player are rejected", func(t *testing.T) {
		b := NewBoard()
		before := b

		require.False(t, b.ApplyMove(-1, X), "Negative index should be rejected")
		require.False(t, b.ApplyMove(9, X), "Index past the grid should be rejected")
		require.False(t, b.ApplyMove(0, Empty), "Empty is not a player")
		require.Equal(t, before, b, "Board should not change")
	})

	t.Run("board copies are independent", func(t *testing.T) {
		b := NewBoard()
		scratch := b
		scratch.ApplyMove(0, O)

		require.Equal(t, Empty, b[0], "Original should not see moves on the copy")
	})
}

func TestStateKey(t *testing.T) {
	b := mustBoard(t, "X", "X", " ", "O", "O", " ", " ", " ", " ")

	require.Equal(t, "XX OO    |O", b.StateKey(O), "Key should concatenate cells and the turn")
	require.NotEqual(t, b.StateKey(X), b.StateKey(O), "Turn should be part of the key")
}

func TestParseBoard(t *testing.T) {
	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ParseBoard([]string{" ", " "})
		require.ErrorIs(t, err, ErrInvalidBoard, "Short board should be rejected")
	})

	t.Run("rejects unknown marks", func(t *testing.T) {
		_, err := ParseBoard([]string{"Z", " ", " ", " ", " ", " ", " ", " ", " "})
		require.ErrorIs(t, err, ErrInvalidBoard, "Unknown mark should be rejected")
	})

	t.Run("round trips cells", func(t *testing.T) {
		cells := []string{"X", " ", "O", " ", " ", " ", " ", " ", "X"}
		b, err := ParseBoard(cells)
		require.NoError(t, err)
		require.Equal(t, cells, b.Cells(), "Cells should match the input")
	})

	t.Run("parses players", func(t *testing.T) {
		p, err := ParsePlayer("O")
		require.NoError(t, err)
		require.Equal(t, O, p)
		require.Equal(t, X, p.Opponent(), "Opponent of O is X")

		_, err = ParsePlayer(" ")
		require.ErrorIs(t, err, ErrInvalidPlayer, "Empty is not a player")
	})
}
