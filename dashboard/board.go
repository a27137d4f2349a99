package dashboard

import (
	"strconv"
	"strings"

	"tictactoe/game"

	"github.com/logrusorgru/aurora"
)

// RenderBoard draws b as a 3x3 grid. Free cells show their index so a
// player can type it.
func RenderBoard(b game.Board, au aurora.Aurora) string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			i := row*3 + col
			switch b[i] {
			case game.X:
				sb.WriteString(au.Bold(au.Red(" X ")).String())
			case game.O:
				sb.WriteString(au.Bold(au.Blue(" O ")).String())
			default:
				sb.WriteString(au.White(" " + strconv.Itoa(i) + " ").String())
			}
			if col < 2 {
				sb.WriteString(au.White("|").String())
			}
		}
		sb.WriteByte('\n')
		if row < 2 {
			sb.WriteString(au.White("---+---+---").String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
