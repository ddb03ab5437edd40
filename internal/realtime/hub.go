// internal/realtime/hub.go

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrTransportUnavailable marks a frame addressed to a user with no
// delivery channel. Delivery is a side effect, never a state transition,
// so callers log it and move on.
var ErrTransportUnavailable = errors.New("no delivery channel for user")

// EventHandler receives connection lifecycle and inbound frames. The
// gateway implements it.
type EventHandler interface {
	HandleConnect(userID string)
	HandleDisconnect(userID string)
	HandleMessage(userID string, msg WSMessage)
}

// Hub maintains active websocket connections, one per user
type Hub struct {
	clients    map[string]*Client
	clientsMux sync.RWMutex

	register   chan *Client
	unregister chan *Client

	handler EventHandler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// SetHandler wires the gateway in. Must be called before Run.
func (h *Hub) SetHandler(handler EventHandler) {
	h.handler = handler
}

func (h *Hub) Run() {
	defer h.cleanup()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clientsMux.Lock()

	// Remove old connection for the same user
	if oldClient, exists := h.clients[client.userID]; exists {
		oldClient.close()
	}
	h.clients[client.userID] = client
	total := len(h.clients)

	h.clientsMux.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.handler.HandleConnect(client.userID)
	}()

	log.Printf("realtime: user %s connected. Total clients: %d", client.userID, total)
}

func (h *Hub) unregisterClient(client *Client) {
	h.clientsMux.Lock()

	current, exists := h.clients[client.userID]
	if !exists || current != client {
		// A newer connection already replaced this one
		h.clientsMux.Unlock()
		return
	}

	client.close()
	delete(h.clients, client.userID)
	total := len(h.clients)

	h.clientsMux.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.handler.HandleDisconnect(client.userID)
	}()

	log.Printf("realtime: user %s disconnected. Total clients: %d", client.userID, total)
}

// SendToUser delivers one frame to a connected user. An offline target
// yields ErrTransportUnavailable; the session layer handles their
// disconnection separately.
func (h *Hub) SendToUser(userID string, message WSMessage) error {
	h.clientsMux.RLock()
	client, exists := h.clients[userID]
	h.clientsMux.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrTransportUnavailable, userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal %s frame: %w", message.Type, err)
	}

	select {
	case client.send <- data:
	default:
		// Slow consumer, drop the connection
		go func() { h.unregister <- client }()
	}
	return nil
}

// SendEvent marshals a payload into the envelope and delivers it.
// Delivery failures are logged and dropped, never retried.
func (h *Hub) SendEvent(userID, eventType string, payload interface{}) {
	if err := h.SendToUser(userID, newWSMessage(eventType, payload)); err != nil {
		log.Printf("realtime: dropping %s frame: %v", eventType, err)
	}
}

func (h *Hub) IsUserOnline(userID string) bool {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	_, exists := h.clients[userID]
	return exists
}

// ConnectedUserIDs snapshots everyone currently online
func (h *Hub) ConnectedUserIDs() []string {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) ActiveConnections() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients)
}

func (h *Hub) Shutdown() {
	h.cancel()
	h.wg.Wait()
}

func (h *Hub) cleanup() {
	h.clientsMux.Lock()
	for _, client := range h.clients {
		client.close()
	}
	h.clients = make(map[string]*Client)
	h.clientsMux.Unlock()

	h.wg.Wait()
}
