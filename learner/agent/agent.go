package agent

import "tictactoe/game"

type Agent interface {
	// FindMove returns a legal move for player p, or false if none exists
	FindMove(b game.Board, p game.Player) (int, bool)
}
