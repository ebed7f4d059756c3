package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Envelope is the frame pushed to a connected session.
type Envelope struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sentAt"`
}

// MessageToSend defines the structure for sending a frame to a specific user.
type MessageToSend struct {
	TargetUserID uuid.UUID
	Payload      []byte
}

// Hub maintains the set of active clients and routes frames to them by user.
type Hub struct {
	// Registered clients. Maps user ID to a set of active client connections.
	clients map[uuid.UUID]map[*Client]bool

	sendDirect chan *MessageToSend
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	logger *slog.Logger

	// Guards clients for Connections, which is read outside the Run loop.
	mu sync.RWMutex
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		sendDirect: make(chan *MessageToSend, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID]map[*Client]bool),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Run processes registrations and deliveries until ctx is cancelled. On exit
// every client's send channel is closed so the write pumps hang up.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("websocket hub started")
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[client.UserID]; !ok {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			count := len(h.clients[client.UserID])
			h.mu.Unlock()
			h.logger.Debug("client registered", "user_id", client.UserID, "connections", count)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.sendDirect:
			h.deliver(message)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userClients, ok := h.clients[client.UserID]
	if !ok || !userClients[client] {
		return
	}
	delete(userClients, client)
	close(client.send)
	if len(userClients) == 0 {
		delete(h.clients, client.UserID)
	}
	h.logger.Debug("client unregistered", "user_id", client.UserID, "remaining", len(userClients))
}

func (h *Hub) deliver(message *MessageToSend) {
	h.mu.RLock()
	var slow []*Client
	for client := range h.clients[message.TargetUserID] {
		select {
		case client.send <- message.Payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// A client that cannot keep up is dropped rather than stalling the hub.
	for _, client := range slow {
		h.logger.Warn("send buffer full, dropping client", "user_id", client.UserID)
		h.remove(client)
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, userClients := range h.clients {
		for client := range userClients {
			close(client.send)
		}
		delete(h.clients, userID)
	}
	h.logger.Info("websocket hub stopped")
}

// SendDirectMessage queues a raw frame for every session of targetUserID.
func (h *Hub) SendDirectMessage(targetUserID uuid.UUID, payload []byte) {
	message := &MessageToSend{TargetUserID: targetUserID, Payload: payload}
	select {
	case h.sendDirect <- message:
	case <-time.After(time.Second):
		h.logger.Warn("timeout queuing frame, hub might be busy", "user_id", targetUserID)
	}
}

// Notify wraps payload in an Envelope and queues it for userID.
func (h *Hub) Notify(userID uuid.UUID, kind string, payload interface{}) {
	frame, err := json.Marshal(Envelope{Kind: kind, Payload: payload, SentAt: time.Now()})
	if err != nil {
		h.logger.Error("failed to encode notification", "kind", kind, "error", err)
		return
	}
	h.SendDirectMessage(userID, frame)
}

// Connections reports how many sessions userID has open.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
