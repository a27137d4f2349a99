package agent

import (
	"testing"

	"tictactoe/game"
	"tictactoe/learner"

	"github.com/stretchr/testify/require"
)

func board(t *testing.T, cells ...string) game.Board {
	t.Helper()
	b, err := game.ParseBoard(cells)
	require.NoError(t, err)
	return b
}

func TestTrainingAgent(t *testing.T) {
	t.Run("takes the win before blocking", func(t *testing.T) {
		l := learner.New(learner.WithSeed(1))
		a := NewTrainingAgent(l, 0)
		b := board(t, "X", "X", " ", "O", "O", " ", " ", " ", " ")

		move, ok := a.FindMove(b, game.O)

		require.True(t, ok)
		require.Equal(t, 5, move, "Winning move should take priority over the block at 2")
	})

	t.Run("blocks when it cannot win", func(t *testing.T) {
		l := learner.New(learner.WithSeed(1))
		a := NewTrainingAgent(l, 0)
		b := board(t, "X", "X", " ", "O", " ", " ", " ", " ", " ")

		move, ok := a.FindMove(b, game.O)

		require.True(t, ok)
		require.Equal(t, 2, move, "Should block X's top row")
	})
}

func TestOpponentAgent(t *testing.T) {
	t.Run("always blocks when the block rate is one", func(t *testing.T) {
		l := learner.New(learner.WithSeed(2))
		a := NewOpponentAgent(l, 1)
		b := board(t, "O", " ", " ", " ", "O", " ", "X", " ", " ")

		for i := 0; i < 20; i++ {
			move, ok := a.FindMove(b, game.X)
			require.True(t, ok)
			require.Equal(t, 8, move, "Should block O's diagonal")
		}
	})

	t.Run("random moves stay legal", func(t *testing.T) {
		l := learner.New(learner.WithSeed(3))
		a := NewOpponentAgent(l, 0)
		b := board(t, "O", "X", "O", "X", " ", "O", "X", "O", " ")

		for i := 0; i < 20; i++ {
			move, ok := a.FindMove(b, game.X)
			require.True(t, ok)
			require.Contains(t, []int{4, 8}, move, "Random move should target an empty cell")
		}
	})

	t.Run("no move on a full board", func(t *testing.T) {
		l := learner.New(learner.WithSeed(3))
		a := NewOpponentAgent(l, 0)

		_, ok := a.FindMove(board(t, "X", "O", "X", "X", "O", "O", "O", "X", "X"), game.X)

		require.False(t, ok, "Full board has no moves")
	})
}

func TestApplyAITurn(t *testing.T) {
	t.Run("full board without winner is a draw and no move is made", func(t *testing.T) {
		l := learner.New(learner.WithSeed(4))
		a := NewEvaluationAgent(l, 0)
		b := board(t, "X", "O", "X", "X", "O", "O", "O", "X", "X")

		got, outcome := a.ApplyAITurn(b, game.O)

		require.Equal(t, Draw, outcome, "Full board should be reported as a draw")
		require.Equal(t, b, got, "Board should be unchanged")
		require.Equal(t, 0, l.Size(), "No learning from a finished game")
	})

	t.Run("human already won", func(t *testing.T) {
		a := NewEvaluationAgent(learner.New(), 0)
		b := board(t, "X", "X", "X", "O", "O", " ", " ", " ", " ")

		got, outcome := a.ApplyAITurn(b, game.O)

		require.Equal(t, PlayerWins, outcome)
		require.Equal(t, b, got, "Board should be unchanged")
		require.Equal(t, "Player X wins!", outcome.Message(game.O))
	})

	t.Run("ai completes its row", func(t *testing.T) {
		l := learner.New(learner.WithSeed(5))
		a := NewEvaluationAgent(l, 0)
		b := board(t, "X", "X", " ", "O", "O", " ", "X", " ", " ")

		got, outcome := a.ApplyAITurn(b, game.O)

		require.Equal(t, game.O, got[5], "AI should play the winning cell")
		require.Equal(t, AIWins, outcome)
		require.Equal(t, "Player O wins!", outcome.Message(game.O))
		require.Equal(t, 0, l.Size(), "Shortcut moves do not update the table")
	})

	t.Run("policy move updates the table and decays epsilon", func(t *testing.T) {
		l := learner.New(learner.WithSeed(6), learner.WithSchedule(learner.Schedule{Start: 0, Min: 0, Decay: 0.5}))
		a := NewEvaluationAgent(l, 0)
		b := game.NewBoard()
		b.ApplyMove(4, game.X)

		got, outcome := a.ApplyAITurn(b, game.O)

		require.Equal(t, Ongoing, outcome)
		require.Equal(t, "", outcome.Message(game.O), "Ongoing game has no message")
		moves := 0
		for i := range got {
			if got[i] == game.O {
				moves++
				require.Equal(t, game.Empty, b[i], "AI must play an empty cell")
			}
		}
		require.Equal(t, 1, moves, "Exactly one AI move")
		require.Equal(t, 1, l.Size(), "Policy move should write one estimate")
	})

	t.Run("policy move that fills the board is rewarded as a draw", func(t *testing.T) {
		l := learner.New(learner.WithSeed(7), learner.WithSchedule(learner.Schedule{Start: 0, Min: 0, Decay: 1}))
		a := NewEvaluationAgent(l, 0)
		b := board(t, "X", "O", "X", "X", "O", "O", "O", "X", " ")
		before := b.StateKey(game.O)

		got, outcome := a.ApplyAITurn(b, game.O)

		require.Equal(t, game.O, got[8])
		require.Equal(t, Draw, outcome)
		require.InDelta(t, learner.DefaultAlpha*LiveDraw, l.Value(before, 8), 1e-12, "Draw reward should be learned")
	})

	t.Run("evaluation agent finds moves without learning", func(t *testing.T) {
		l := learner.New(learner.WithSeed(8))
		a := NewEvaluationAgent(l, 0.15)

		move, ok := a.FindMove(game.NewBoard(), game.X)

		require.True(t, ok)
		require.GreaterOrEqual(t, move, 0)
		require.Equal(t, 0, l.Size(), "FindMove should not touch the table")
	})
}
