package agent

import (
	"tictactoe/game"
	"tictactoe/learner"
)

type opponentAgent struct {
	learner   *learner.Learner
	blockRate float64
}

// NewOpponentAgent returns the sparring seat: a uniformly random mover that,
// with probability blockRate, first occupies a cell where the other side
// would complete a triple. It never reads the value table.
func NewOpponentAgent(l *learner.Learner, blockRate float64) Agent {
	return opponentAgent{learner: l, blockRate: blockRate}
}

func (a opponentAgent) FindMove(b game.Board, p game.Player) (int, bool) {
	if a.learner.Roll() < a.blockRate {
		if move, ok := learner.FindWinningMove(b, p.Opponent()); ok {
			return move, true
		}
	}
	return a.learner.RandomMove(b.AvailableMoves())
}
