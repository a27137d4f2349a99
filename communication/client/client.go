package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tictactoe/communication"
	"tictactoe/game"
	"tictactoe/gamemaster"
)

// Client talks to a running server.
type Client struct {
	serverURL string
	http      *http.Client
}

func New(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// NewGame initializes the server's learner if needed and returns an empty
// board.
func (c *Client) NewGame(ctx context.Context) (game.Board, error) {
	var resp communication.MoveResponse
	if err := c.do(ctx, http.MethodGet, "/", nil, &resp); err != nil {
		return game.Board{}, err
	}
	return game.ParseBoard(resp.Board)
}

// Move asks the server to play ai's turn on b. The message is empty while
// the game goes on.
func (c *Client) Move(ctx context.Context, b game.Board, ai game.Player) (game.Board, string, error) {
	req := communication.MoveRequest{Board: b.Cells(), AISymbol: ai.String()}
	var resp communication.MoveResponse
	if err := c.do(ctx, http.MethodPost, "/move", req, &resp); err != nil {
		return b, "", err
	}
	board, err := game.ParseBoard(resp.Board)
	if err != nil {
		return b, "", fmt.Errorf("server returned a bad board: %w", err)
	}
	return board, resp.Message, nil
}

func (c *Client) Stats(ctx context.Context) (gamemaster.Stats, error) {
	var stats gamemaster.Stats
	err := c.do(ctx, http.MethodGet, "/api/stats", nil, &stats)
	return stats, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e communication.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, e.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
