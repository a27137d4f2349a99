package engine

import (
	"context"
	"testing"

	"tictactoe/game"
	"tictactoe/learner"
	"tictactoe/metrics"

	"github.com/stretchr/testify/require"
)

// scriptedAgent plays the first still-empty cell of its script.
type scriptedAgent struct {
	script []int
}

func (a scriptedAgent) FindMove(b game.Board, p game.Player) (int, bool) {
	for _, move := range a.script {
		if b[move] == game.Empty {
			return move, true
		}
	}
	return -1, false
}

type illegalAgent struct{}

func (illegalAgent) FindMove(b game.Board, p game.Player) (int, bool) {
	return 0, true
}

func TestReward(t *testing.T) {
	t.Run("terminal outcomes from the learning side", func(t *testing.T) {
		oWins, _ := game.ParseBoard([]string{"X", "X", " ", "O", "O", "O", "X", " ", " "})
		xWins, _ := game.ParseBoard([]string{"X", "X", "X", "O", "O", " ", " ", " ", " "})
		draw, _ := game.ParseBoard([]string{"X", "O", "X", "X", "O", "O", "O", "X", "X"})

		require.InDelta(t, WinReward, Reward(oWins, 5), 1e-12, "Edge cell has no bonus")
		require.InDelta(t, LossReward+CornerBonus, Reward(xWins, 2), 1e-12, "Corner bonus is added to a loss")
		require.InDelta(t, DrawReward+CornerBonus, Reward(draw, 8), 1e-12)
	})

	t.Run("bonus is added on non-terminal moves", func(t *testing.T) {
		b := game.NewBoard()
		b.ApplyMove(4, game.O)

		require.InDelta(t, CenterBonus, Reward(b, 4), 1e-12, "Centre move earns its bonus")
		require.Equal(t, 0.0, PositionalBonus(1), "Edge move earns nothing")
		require.Equal(t, CornerBonus, PositionalBonus(6))
	})
}

func TestEngineRun(t *testing.T) {
	t.Run("only learning side transitions are learned", func(t *testing.T) {
		l := learner.New(learner.WithSeed(1))
		e := New(l, WithSeats(scriptedAgent{script: []int{3, 4, 5}}, scriptedAgent{script: []int{0, 1, 8}}))

		episode, err := e.Run(0)

		require.NoError(t, err)
		require.Equal(t, game.X, episode.Starter, "Even episodes start with X")
		require.Equal(t, game.O, episode.Winner, "O completes the middle row")
		require.Equal(t, metrics.Win, episode.Result())
		require.Len(t, episode.Steps, 6, "X and O alternate until O completes its row")
		require.Equal(t, 3, l.Size(), "One estimate per O move")

		last := episode.Steps[len(episode.Steps)-1]
		require.Equal(t, game.O, last.Player)
		require.Equal(t, 5, last.Action)
		require.InDelta(t, WinReward, last.Reward, 1e-12)
		require.InDelta(t, learner.DefaultAlpha*WinReward, l.Value(last.State, 5), 1e-12,
			"Winning move is terminal, so only the reward counts")
	})

	t.Run("odd episodes start with O", func(t *testing.T) {
		l := learner.New(learner.WithSeed(1))
		e := New(l, WithSeats(scriptedAgent{script: []int{0, 1, 2}}, scriptedAgent{script: []int{3, 4, 5}}))

		episode, err := e.Run(1)

		require.NoError(t, err)
		require.Equal(t, game.O, episode.Starter)
		require.Equal(t, game.O, episode.Steps[0].Player)
		require.Equal(t, "         |O", episode.Steps[0].State, "First state is the empty board with O to move")
	})

	t.Run("losses are scored negatively but never learned from X's moves", func(t *testing.T) {
		l := learner.New(learner.WithSeed(1))
		e := New(l, WithSeats(scriptedAgent{script: []int{6, 7, 3}}, scriptedAgent{script: []int{0, 1, 2}}))

		episode, err := e.Run(0)

		require.NoError(t, err)
		require.Equal(t, game.X, episode.Winner)
		require.Equal(t, metrics.Loss, episode.Result())
		last := episode.Steps[len(episode.Steps)-1]
		require.Equal(t, game.X, last.Player)
		require.InDelta(t, LossReward+CornerBonus, last.Reward, 1e-12)
		require.Equal(t, 2, l.Size(), "Only O's two moves are stored")
	})

	t.Run("illegal seat aborts the episode", func(t *testing.T) {
		l := learner.New(learner.WithSeed(1))
		e := New(l, WithSeats(illegalAgent{}, illegalAgent{}))

		_, err := e.Run(0)

		require.Error(t, err, "Second move on an occupied cell should fail")
	})
}

func TestEngineTrain(t *testing.T) {
	t.Run("decays epsilon once per episode and reports progress", func(t *testing.T) {
		schedule := learner.Schedule{Start: 1, Min: 0.01, Decay: 0.99}
		l := learner.New(learner.WithSeed(2), learner.WithSchedule(schedule))
		var reports []Report
		e := New(l,
			WithReportEvery(10),
			WithReporter(func(r Report) { reports = append(reports, r) }),
			WithMetrics(),
		)

		metric, err := e.Train(context.Background(), 25)

		require.NoError(t, err)
		require.InDelta(t, schedule.After(25), l.Epsilon(), 1e-12, "Epsilon should follow the schedule")
		require.Equal(t, 25, metric.Episodes)
		require.Equal(t, 25, metric.Wins+metric.Losses+metric.Draws)
		require.Len(t, reports, 3, "Reports at episodes 0, 10 and 20")
		require.Equal(t, []int{0, 10, 20}, []int{reports[0].Episode, reports[1].Episode, reports[2].Episode})
		require.Greater(t, l.Size(), 0, "Training should populate the table")
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		l := learner.New(learner.WithSeed(3))
		e := New(l)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := e.Train(ctx, 100)

		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 0, l.Size(), "No episode should run after cancellation")
	})

	t.Run("seat errors end the batch", func(t *testing.T) {
		l := learner.New(learner.WithSeed(4))
		e := New(l, WithSeats(illegalAgent{}, illegalAgent{}))

		_, err := e.Train(context.Background(), 3)

		require.Error(t, err)
	})
}
