package server

import (
	"encoding/json"
	"sync"

	"tictactoe/communication"
	"tictactoe/engine"
	"tictactoe/metrics"
)

// Hub fans training progress out to websocket clients. Slow clients drop
// messages rather than stall training.
type Hub struct {
	mu        sync.Mutex
	clients   map[*Client]struct{}
	broadcast chan communication.Message
}

type Client struct {
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan communication.Message, 64),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				client.sendJSON(msg)
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues a message for every client without blocking. Nothing is
// queued while nobody listens.
func (h *Hub) Publish(msgType string, payload any) {
	if !h.HasClients() {
		return
	}
	select {
	case h.broadcast <- communication.Message{Type: msgType, Payload: mustMarshal(payload)}:
	default:
	}
}

func (h *Hub) PublishReport(r engine.Report) {
	h.Publish(communication.TypeReport, r)
}

func (h *Hub) PublishBatch(r metrics.BatchRecord) {
	h.Publish(communication.TypeBatch, r)
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (c *Client) sendJSON(msg communication.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
