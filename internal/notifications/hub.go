package notifications

import (
	"context"
	"errors"
	"sync"

	"reelhub/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser = 8
	maxTotalConns   = 10000
)

var (
	ErrServerFull = errors.New("server connection limit reached")
	ErrUserFull   = errors.New("user connection limit reached")
)

// Hub maps user ids to their open notification connections.
type Hub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Name() string { return "notifications" }

// Register adds a connection for userID, enforcing per-user and global limits.
func (h *Hub) Register(userID string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, ErrServerFull
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserFull
	}

	client := NewClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnectionsTotal.WithLabelValues(h.Name()).Inc()
	return client, nil
}

func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; exists {
		delete(m, client)
		close(client.Send)
		h.totalConns--
		observability.WebSocketConnectionsTotal.WithLabelValues(h.Name()).Dec()
	}
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
}

// Deliver sends message to every connection of userID.
func (h *Hub) Deliver(userID, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.conns[userID] {
		c.TrySend(data)
	}
}

// Connected reports how many connections userID has open.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// StartWiring forwards every notification published through n to the
// matching user's connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.Subscribe(ctx, h.Deliver)
}

// Shutdown closes every connection.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, clients := range h.conns {
		for client := range clients {
			if client.Conn != nil {
				if err := client.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
					observability.GlobalLogger.Warn("failed to write close message", "user_id", userID, "error", err.Error())
				}
				_ = client.Conn.Close()
			}
			close(client.Send)
			observability.WebSocketConnectionsTotal.WithLabelValues(h.Name()).Dec()
		}
	}
	h.conns = make(map[string]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
