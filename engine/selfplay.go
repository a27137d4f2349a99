package engine

import (
	"context"
	"fmt"
	"time"

	"tictactoe/game"
	"tictactoe/learner"
	"tictactoe/learner/agent"
	"tictactoe/metrics"

	"github.com/rs/zerolog/log"
)

// LearningSide is the only seat whose transitions feed the value table.
const LearningSide = game.O

// Self-play rewards for the learning side. The positional bonus is added to
// every learning-side move, terminal or not.
const (
	WinReward   = 5.0
	LossReward  = -3.0
	DrawReward  = 1.0
	CenterBonus = 0.3
	CornerBonus = 0.2
)

// Default seat heuristics
const (
	DefaultExploreRate = 0.1 // learning seat skips its heuristics
	DefaultBlockRate   = 0.3 // sparring seat tries to block
	DefaultReportEvery = 2000
)

// Step is one transition of an episode trace.
type Step struct {
	Player game.Player
	State  string
	Action int
	Reward float64
	Next   string
}

type Episode struct {
	Index   int
	Starter game.Player
	Steps   []Step
	Final   game.Board
	Winner  game.Player
}

// Result is the episode outcome from the learning side's point of view.
func (e Episode) Result() metrics.Result {
	switch e.Winner {
	case LearningSide:
		return metrics.Win
	case LearningSide.Opponent():
		return metrics.Loss
	default:
		return metrics.Draw
	}
}

// Report is a periodic progress sample.
type Report struct {
	Episode   int       `json:"episode"`
	Epsilon   float64   `json:"epsilon"`
	TableSize int       `json:"table_size"`
	Time      time.Time `json:"time"`
}

type Option func(e *Engine)

type Engine struct {
	learner     *learner.Learner
	seats       map[game.Player]agent.Agent
	reportEvery int
	reporters   []func(Report)
	metrics     metrics.Collector
}

func WithSeats(learning, sparring agent.Agent) Option {
	return func(e *Engine) {
		if learning != nil {
			e.seats[LearningSide] = learning
		}
		if sparring != nil {
			e.seats[LearningSide.Opponent()] = sparring
		}
	}
}

func WithReportEvery(episodes int) Option {
	return func(e *Engine) {
		if episodes > 0 {
			e.reportEvery = episodes
		}
	}
}

// WithReporter registers a callback for progress reports. Callbacks run on
// the training goroutine and must not block.
func WithReporter(reporter func(Report)) Option {
	return func(e *Engine) {
		if reporter != nil {
			e.reporters = append(e.reporters, reporter)
		}
	}
}

func WithMetrics() Option {
	return func(e *Engine) {
		e.metrics = metrics.NewCollector()
	}
}

func New(l *learner.Learner, options ...Option) *Engine {
	e := &Engine{ // Default values
		learner: l,
		seats: map[game.Player]agent.Agent{
			LearningSide:            agent.NewTrainingAgent(l, DefaultExploreRate),
			LearningSide.Opponent(): agent.NewOpponentAgent(l, DefaultBlockRate),
		},
		reportEvery: DefaultReportEvery,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Train plays episodes self-play games, decaying epsilon after each one.
// Episode indices restart at 0 for every call. It stops early with the
// context's error if ctx is cancelled between episodes.
func (e *Engine) Train(ctx context.Context, episodes int) (metrics.BatchMetric, error) {
	e.metrics.Start()
	for i := 0; i < episodes; i++ {
		if err := ctx.Err(); err != nil {
			return e.metrics.Complete(), err
		}

		episode, err := e.Run(i)
		if err != nil {
			return e.metrics.Complete(), fmt.Errorf("episode %d: %w", i, err)
		}
		e.metrics.AddEpisode(episode.Result())
		epsilon := e.learner.DecayEpsilon()

		if i%e.reportEvery == 0 {
			e.report(Report{
				Episode:   i,
				Epsilon:   epsilon,
				TableSize: e.learner.Size(),
				Time:      time.Now(),
			})
		}
	}
	return e.metrics.Complete(), nil
}

func (e *Engine) report(r Report) {
	log.Info().
		Int("episode", r.Episode).
		Float64("epsilon", r.Epsilon).
		Int("table_size", r.TableSize).
		Msg("training progress")
	for _, reporter := range e.reporters {
		reporter(r)
	}
}

// Run plays one episode on a fresh board. X starts even episodes and O
// starts odd ones. Learning-side transitions are applied to the table as
// they happen.
func (e *Engine) Run(index int) (Episode, error) {
	current := game.X
	if index%2 != 0 {
		current = game.O
	}
	episode := Episode{Index: index, Starter: current}
	board := game.NewBoard()

	for !board.IsTerminal() {
		seat := e.seats[current]
		before := board.StateKey(current)

		action, ok := seat.FindMove(board, current)
		if !ok {
			return episode, fmt.Errorf("seat %s found no move on %q", current, before)
		}
		if !board.ApplyMove(action, current) {
			return episode, fmt.Errorf("seat %s chose illegal move %d on %q", current, action, before)
		}

		next := current.Opponent()
		step := Step{
			Player: current,
			State:  before,
			Action: action,
			Reward: Reward(board, action),
			Next:   board.StateKey(next),
		}
		if current == LearningSide {
			e.learner.Update(step.State, step.Action, step.Reward, step.Next, NextActions(board))
		}
		episode.Steps = append(episode.Steps, step)
		current = next
	}

	episode.Final = board
	episode.Winner = board.Winner()
	return episode, nil
}

// NextActions are the actions available after a transition. A finished
// game has none.
func NextActions(b game.Board) []int {
	if b.IsTerminal() {
		return nil
	}
	return b.AvailableMoves()
}

// Reward scores the board right after action was played, from the learning
// side's point of view, plus the positional bonus of the action.
func Reward(b game.Board, action int) float64 {
	reward := 0.0
	switch winner := b.Winner(); {
	case winner == LearningSide:
		reward = WinReward
	case winner == LearningSide.Opponent():
		reward = LossReward
	case b.IsFull():
		reward = DrawReward
	}
	return reward + PositionalBonus(action)
}

func PositionalBonus(action int) float64 {
	switch action {
	case 4:
		return CenterBonus
	case 0, 2, 6, 8:
		return CornerBonus
	default:
		return 0
	}
}
