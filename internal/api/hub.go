package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/talgya/worldsim/internal/engine"
)

const (
	writeWait     = 10 * time.Second
	sendQueueSize = 16
)

// Hub fans completed-tick payloads out to every connected dashboard. Clients
// may also send intervention requests back over the same socket.
type Hub struct {
	world    *engine.World
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*wsClient
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

// NewHub builds a hub bound to the world it reports on.
func NewHub(world *engine.World) *Hub {
	return &Hub{
		world:   world,
		clients: make(map[string]*wsClient),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Cross-origin policy is enforced by the CORS middleware; the
			// socket itself accepts any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the request and serves the client until it disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()
	slog.Info("dashboard client connected", "client", c.id, "total", count)

	// Greet with the current position so the dashboard renders immediately.
	init, _ := json.Marshal(map[string]any{
		"type":    "init",
		"tick":    h.world.CurrentTick(),
		"running": true,
	})
	select {
	case c.send <- init:
	default:
	}

	go h.writePump(c)
	h.readPump(c)
}

// Broadcast serializes the payload once and queues it to every client.
// Clients too slow to drain their queue are dropped rather than stalling
// the tick callback.
func (h *Hub) Broadcast(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("broadcast encode failed", "error", err)
		return
	}

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case c.send <- data:
		default:
			slog.Warn("dropping slow dashboard client", "client", c.id)
			h.drop(c)
		}
	}
}

// ClientCount reports the number of connected dashboards.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// interventionMsg is the inbound client message shape.
type interventionMsg struct {
	Type    string `json:"type"`
	Payload struct {
		Action string `json:"action"`
		Target string `json:"target"`
	} `json:"payload"`
}

func (h *Hub) readPump(c *wsClient) {
	defer h.drop(c)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg interventionMsg
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "intervene" {
			continue
		}

		ack := map[string]any{"type": "intervention_ack", "status": "applied"}
		if _, err := h.world.Intervene(msg.Payload.Action, msg.Payload.Target); err != nil {
			ack["status"] = "rejected"
			ack["error"] = err.Error()
		}
		if data, err := json.Marshal(ack); err == nil {
			select {
			case c.send <- data:
			default:
			}
		}
	}
}

func (h *Hub) writePump(c *wsClient) {
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.drop(c)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (h *Hub) drop(c *wsClient) {
	c.once.Do(func() {
		h.mu.Lock()
		delete(h.clients, c.id)
		count := len(h.clients)
		h.mu.Unlock()

		close(c.done)
		c.conn.Close()
		slog.Info("dashboard client disconnected", "client", c.id, "total", count)
	})
}
