package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"tictactoe/communication"
	"tictactoe/game"
	"tictactoe/gamemaster"
	"tictactoe/learner/agent"
	"tictactoe/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Backend is the game master as seen by the HTTP layer.
type Backend interface {
	Init()
	Move(b game.Board, ai game.Player) (game.Board, agent.Outcome)
	Stats() gamemaster.Stats
	History() []metrics.BatchRecord
}

type Server struct {
	backend Backend
	hub     *Hub
}

func New(backend Backend, hub *Hub) *Server {
	return &Server{backend: backend, hub: hub}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/move", s.handleMove)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/stats/chart", s.handleChart)
	r.Get("/ws/progress", s.handleProgress)
	return r
}

// handleIndex makes sure the learner is ready and hands out a fresh board.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.backend.Init()
	writeJSON(w, http.StatusOK, communication.MoveResponse{Board: game.NewBoard().Cells()})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req communication.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, communication.ErrorResponse{Error: "invalid payload"})
		return
	}
	board, err := game.ParseBoard(req.Board)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, communication.ErrorResponse{Error: err.Error()})
		return
	}
	if req.AISymbol == "" {
		req.AISymbol = game.O.String()
	}
	ai, err := game.ParsePlayer(req.AISymbol)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, communication.ErrorResponse{Error: err.Error()})
		return
	}

	board, outcome := s.backend.Move(board, ai)
	log.Debug().
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("board", board.StateKey(ai.Opponent())).
		Stringer("outcome", outcome).
		Msg("ai turn played")
	writeJSON(w, http.StatusOK, communication.MoveResponse{
		Board:   board.Cells(),
		Message: outcome.Message(ai),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.backend.Stats())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := metrics.RenderChart(w, s.backend.History()); err != nil {
		log.Error().Err(err).Msg("failed to render learning chart")
	}
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{send: make(chan []byte, 16)}
	s.hub.Register(client)
	client.sendJSON(communication.Message{Type: communication.TypeStats, Payload: mustMarshal(s.backend.Stats())})

	go func() {
		defer conn.Close()
		if err := writeWithHeartbeat(conn, client.send); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			log.Debug().Err(err).Msg("progress stream closed")
		}
	}()

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.Unregister(client)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
