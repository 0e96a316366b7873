package ws

import (
	"sync"

	"colegio_backend/internal/logger"
	"colegio_backend/internal/unread"
)

// WebSocketManager tracks connected clients and pushes badge updates to
// them. A user can hold several connections (phone and tablet); every
// connection gets its own subscription to the user's badge record.
type WebSocketManager struct {
	hub *unread.Hub

	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewWebSocketManager(hub *unread.Hub) *WebSocketManager {
	return &WebSocketManager{
		hub:        hub,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]struct{}),
	}
}

func (manager *WebSocketManager) Run() {
	for {
		select {
		case client := <-manager.register:
			manager.add(client)

		case client := <-manager.unregister:
			manager.remove(client)
		}
	}
}

func (manager *WebSocketManager) add(client *Client) {
	manager.mu.Lock()
	if manager.clients[client.UserID] == nil {
		manager.clients[client.UserID] = make(map[*Client]struct{})
	}
	manager.clients[client.UserID][client] = struct{}{}
	total := len(manager.clients[client.UserID])
	manager.mu.Unlock()

	// Subscribing also starts the user's engine on first connect, so the
	// initial counts arrive without any client request.
	counts, unsubscribe := manager.hub.State(client.UserID).Subscribe()
	client.startBadgePush(counts, unsubscribe)

	logger.Debug("ws client connected", "user_id", client.UserID, "connections", total)
}

func (manager *WebSocketManager) remove(client *Client) {
	manager.mu.Lock()
	if conns, ok := manager.clients[client.UserID]; ok {
		if _, present := conns[client]; present {
			delete(conns, client)
			close(client.Send)
		}
		if len(conns) == 0 {
			delete(manager.clients, client.UserID)
		}
	}
	manager.mu.Unlock()

	logger.Debug("ws client disconnected", "user_id", client.UserID)
}
