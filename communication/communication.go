package communication

import "encoding/json"

// MoveRequest asks the AI to play one turn on board.
type MoveRequest struct {
	Board    []string `json:"board"`
	AISymbol string   `json:"aiSymbol"`
}

// MoveResponse carries the board after the AI's turn. Message is empty
// while the game goes on.
type MoveResponse struct {
	Board   []string `json:"board"`
	Message string   `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Message is a websocket frame.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Websocket message types
const (
	TypeStats  = "stats"
	TypeReport = "report"
	TypeBatch  = "batch"
	TypePing   = "ping"
)
