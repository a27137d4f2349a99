package agent

import (
	"tictactoe/game"
	"tictactoe/learner"

	"github.com/rs/zerolog/log"
)

// Rewards fed back from live games. They are deliberately on a different
// scale from the self-play rewards in the engine package.
const (
	LiveWin  = 1.0
	LiveLoss = -1.0
	LiveDraw = 0.3
)

// DefaultExploreRate is the chance that a live move skips the win and block
// shortcuts.
const DefaultExploreRate = 0.15

type Outcome int

const (
	Ongoing Outcome = iota
	PlayerWins
	AIWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case PlayerWins:
		return "player-wins"
	case AIWins:
		return "ai-wins"
	case Draw:
		return "draw"
	default:
		return "none"
	}
}

// Message is the human readable result for a game where the AI plays ai.
// An ongoing game has no message.
func (o Outcome) Message(ai game.Player) string {
	switch o {
	case PlayerWins:
		return "Player " + ai.Opponent().String() + " wins!"
	case AIWins:
		return "Player " + ai.String() + " wins!"
	case Draw:
		return "It's a draw!"
	default:
		return ""
	}
}

// EvaluationAgent plays live games against humans. Moves that fall through
// to the learned policy also update the table.
type EvaluationAgent struct {
	learner     *learner.Learner
	exploreRate float64
}

func NewEvaluationAgent(l *learner.Learner, exploreRate float64) *EvaluationAgent {
	return &EvaluationAgent{learner: l, exploreRate: exploreRate}
}

// FindMove picks a live move without learning from it.
func (a *EvaluationAgent) FindMove(b game.Board, p game.Player) (int, bool) {
	move, _, ok := a.decide(b, p)
	return move, ok
}

// decide reports whether the move came from the learned policy rather than
// from pure exploration or a win/block shortcut.
func (a *EvaluationAgent) decide(b game.Board, p game.Player) (move int, policy bool, ok bool) {
	if a.learner.Roll() < a.exploreRate {
		move, ok = a.learner.ChooseAction(b, p)
		return move, false, ok
	}
	if move, ok = learner.FindWinningMove(b, p); ok {
		return move, false, true
	}
	if move, ok = learner.FindWinningMove(b, p.Opponent()); ok {
		return move, false, true
	}
	move, ok = a.learner.ChooseAction(b, p)
	return move, ok, ok
}

// ApplyAITurn plays exactly one move for ai unless the game is already over,
// and returns the resulting board and outcome.
func (a *EvaluationAgent) ApplyAITurn(b game.Board, ai game.Player) (game.Board, Outcome) {
	human := ai.Opponent()
	switch {
	case b.HasWon(human):
		return b, PlayerWins
	case b.HasWon(ai):
		return b, AIWins
	case b.IsFull():
		return b, Draw
	}

	before := b.StateKey(ai)
	move, policy, ok := a.decide(b, ai)
	if !ok || !b.ApplyMove(move, ai) {
		// decide only returns empty cells, so this means a broken invariant
		log.Error().Int("move", move).Str("board", before).Msg("live agent produced no legal move")
		return b, Ongoing
	}

	if policy {
		reward := 0.0
		switch {
		case b.HasWon(ai):
			reward = LiveWin
		case b.HasWon(human):
			reward = LiveLoss
		case b.IsFull():
			reward = LiveDraw
		}
		legal := b.AvailableMoves()
		if b.IsTerminal() {
			legal = nil
		}
		a.learner.Update(before, move, reward, b.StateKey(human), legal)
		a.learner.DecayEpsilon()
	}

	switch {
	case b.HasWon(ai):
		return b, AIWins
	case b.IsFull():
		return b, Draw
	default:
		return b, Ongoing
	}
}
