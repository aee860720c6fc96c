package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ripple-chat/internal/domain"
	"ripple-chat/pkg/logger"
)

// Hub maps each user to their single active WebSocket connection and
// fans change events out to them. One connection per user: registering
// a new connection replaces and closes the previous one.
//
// Delivery is best-effort. A user without a connection is skipped, a
// full send buffer drops the event, nothing is retried or persisted.
// Clients recover missed events by re-fetching over HTTP.
type Hub struct {
	mu sync.RWMutex

	// clients maps user ID to the user's active connection
	clients map[int64]*Client

	// Control channels
	register   chan *Client // New client connections
	unregister chan *Client // Client disconnections

	logger *logger.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(l *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		logger:     l,
	}
}

// Run starts the hub's event loop
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Notify sends the event to each listed user with a live connection.
// Users without one are skipped silently. Never blocks the caller.
func (h *Hub) Notify(userIDs []int64, event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		if h.logger != nil {
			h.logger.Errorf("marshal event %s: %v", event.Type, err)
		}
		return
	}

	h.mu.RLock()
	for _, userID := range userIDs {
		if client, ok := h.clients[userID]; ok {
			client.SendMessage(payload)
		}
	}
	h.mu.RUnlock()
}

// Broadcast sends the event to every connected user except the
// excluded ones.
func (h *Hub) Broadcast(event domain.Event, exclude ...int64) {
	payload, err := json.Marshal(event)
	if err != nil {
		if h.logger != nil {
			h.logger.Errorf("marshal event %s: %v", event.Type, err)
		}
		return
	}

	excluded := make(map[int64]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	h.mu.RLock()
	for userID, client := range h.clients {
		if _, skip := excluded[userID]; skip {
			continue
		}
		client.SendMessage(payload)
	}
	h.mu.RUnlock()
}

// IsConnected reports whether the user has a live connection
func (h *Hub) IsConnected(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// addClient adds a new client, replacing the user's previous
// connection if one exists (internal)
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.clients[client.UserID]; ok && prev != client {
		close(prev.Send)
	}
	h.clients[client.UserID] = client
}

// removeClient removes a client (internal). A disconnect from a
// connection that has already been replaced must not drop the newer
// one, so the map entry is only cleared when it still points at this
// client.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.clients[client.UserID]
	if !ok || current != client {
		return
	}
	delete(h.clients, client.UserID)
	close(client.Send)
}
