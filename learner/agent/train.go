package agent

import (
	"tictactoe/game"
	"tictactoe/learner"
)

type trainingAgent struct {
	learner     *learner.Learner
	exploreRate float64
}

// NewTrainingAgent returns the mostly optimal seat used by the learning side
// during self-play: win if possible, else block, else epsilon-greedy. With
// probability exploreRate it skips the heuristics and goes straight to the
// epsilon-greedy policy.
func NewTrainingAgent(l *learner.Learner, exploreRate float64) Agent {
	return trainingAgent{learner: l, exploreRate: exploreRate}
}

func (a trainingAgent) FindMove(b game.Board, p game.Player) (int, bool) {
	if a.learner.Roll() < a.exploreRate {
		return a.learner.ChooseAction(b, p)
	}
	if move, ok := learner.FindWinningMove(b, p); ok {
		return move, true
	}
	if move, ok := learner.FindWinningMove(b, p.Opponent()); ok {
		return move, true
	}
	return a.learner.ChooseAction(b, p)
}
