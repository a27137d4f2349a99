package learner

import (
	"tictactoe/game"
	"tictactoe/utils"

	"golang.org/x/exp/rand"
)

// ChooseAction picks a move for p with the current exploration rate.
func (l *Learner) ChooseAction(b game.Board, p game.Player) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return chooseAction(l.table, l.rng, b, p, l.epsilon)
}

// ChooseActionWith picks a move for p with an explicit exploration rate.
func (l *Learner) ChooseActionWith(b game.Board, p game.Player, epsilon float64) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return chooseAction(l.table, l.rng, b, p, epsilon)
}

// Epsilon-greedy: with probability epsilon a uniformly random legal move,
// otherwise a uniformly random move among those with the highest value.
func chooseAction(t *Table, rng *rand.Rand, b game.Board, p game.Player, epsilon float64) (int, bool) {
	moves := b.AvailableMoves()
	if len(moves) == 0 {
		return -1, false
	}
	if rng.Float64() < epsilon {
		return moves[rng.Intn(len(moves))], true
	}

	state := b.StateKey(p)
	values := make([]float64, len(moves))
	for i, move := range moves {
		values[i] = t.Get(state, move)
	}
	best := utils.MaxIndices(values)
	return moves[best[rng.Intn(len(best))]], true
}

// Update applies the one-step Q-learning rule
//
//	Q[old,a] += alpha * (reward + gamma * max_a' Q[next,a'] - Q[old,a])
//
// where a' ranges over legalNext. A terminal next state has no legal
// actions and contributes 0. It returns the new estimate.
func (l *Learner) Update(old string, action int, reward float64, next string, legalNext []int) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return update(l.table, l.alpha, l.gamma, old, action, reward, next, legalNext)
}

func update(t *Table, alpha, gamma float64, old string, action int, reward float64, next string, legalNext []int) float64 {
	oldQ := t.Get(old, action)
	future := t.BestValue(next, legalNext)
	newQ := oldQ + alpha*(reward+gamma*future-oldQ)
	t.Set(old, action, newQ)
	return newQ
}

// FindWinningMove returns the first legal move that completes a triple for
// p, trying each on a scratch copy of the board.
func FindWinningMove(b game.Board, p game.Player) (int, bool) {
	for _, move := range b.AvailableMoves() {
		scratch := b
		scratch.ApplyMove(move, p)
		if scratch.HasWon(p) {
			return move, true
		}
	}
	return -1, false
}
