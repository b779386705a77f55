package api

import (
	"log/slog"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Broadcast event types
const (
	EventPrintSucceeded = "print_succeeded"
	EventPrintFailed    = "print_failed"
	EventPrinterAdded   = "printer_added"
	EventPrinterRemoved = "printer_removed"
)

// Event is one broadcast message
type Event struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// Hub fans print and printer events out to connected WebSocket clients.
// Delivery is best-effort: a client whose send buffer is full misses the
// event rather than stalling the broadcaster.
type Hub struct {
	clients map[*wsClient]bool
	mu      sync.RWMutex
	logger  *slog.Logger
}

type wsClient struct {
	conn *websocket.Conn
	send chan Event
}

func newHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*wsClient]bool),
		logger:  logger,
	}
}

// Broadcast sends an event to every connected client
func (h *Hub) Broadcast(event string, data map[string]any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := Event{Event: event, Data: data}

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			// Client send buffer full, skip
		}
	}
}

func (h *Hub) add(client *wsClient) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
}

func (h *Hub) remove(client *wsClient) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
}

// handleWebSocket upgrades the connection and attaches it to the hub
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan Event, 256),
	}

	s.hub.add(client)
	s.logger.Info("websocket client connected")

	go client.writePump()
	go client.readPump(s.hub, s.logger)
}

func (c *wsClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// readPump drains inbound frames until the peer goes away; the event
// stream is one-directional
func (c *wsClient) readPump(hub *Hub, logger *slog.Logger) {
	defer func() {
		hub.remove(c)
		close(c.send)
		c.conn.Close()
		logger.Info("websocket client disconnected")
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
	}
}
