// Package dashboard broadcasts live queue state to WebSocket clients, the
// way the teacher's internal/websocket package streams telemetry updates
// to its admin UI, retargeted to periodic natsqueue.Storage.Stats polls
// instead of per-event telemetry pushes.
package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Hub maintains active WebSocket connections and fans out channel updates.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	subscriptions map[string]map[*Client]bool

	mu sync.RWMutex
}

// Message is the wire envelope sent to dashboard clients.
type Message struct {
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	Error     *ErrorDetails  `json:"error,omitempty"`
}

// ErrorDetails carries a machine-readable error code plus a message.
type ErrorDetails struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		broadcast:     make(chan *Message, 256),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Run drives the hub's event loop until ctx is cancelled, pinging
// connected clients every 30s to detect dead connections early.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logf("client registered: %s", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				for channel := range h.subscriptions {
					delete(h.subscriptions[channel], client)
				}
			}
			h.mu.Unlock()
			logf("client unregistered: %s", client.id)

		case message := <-h.broadcast:
			h.broadcastToSubscribers(message)

		case <-ticker.C:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- &Message{Type: "ping", Timestamp: nowRFC3339()}:
				default:
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			logf("shutting down")
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) broadcastToSubscribers(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if message.Channel == "" {
		for client := range h.clients {
			select {
			case client.send <- message:
			default:
				logf("client %s send buffer full, dropping message", client.id)
			}
		}
		return
	}

	subscribers, ok := h.subscriptions[message.Channel]
	if !ok {
		return
	}
	for client := range subscribers {
		select {
		case client.send <- message:
		default:
			logf("client %s send buffer full, dropping message", client.id)
		}
	}
}

// Subscribe adds client to the listed channels.
func (h *Hub) Subscribe(client *Client, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, channel := range channels {
		if h.subscriptions[channel] == nil {
			h.subscriptions[channel] = make(map[*Client]bool)
		}
		h.subscriptions[channel][client] = true
	}
}

// Unsubscribe removes client from the listed channels.
func (h *Hub) Unsubscribe(client *Client, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, channel := range channels {
		if subscribers, ok := h.subscriptions[channel]; ok {
			delete(subscribers, client)
		}
	}
}

// BroadcastToChannel sends data to every subscriber of channel.
func (h *Hub) BroadcastToChannel(channel string, data map[string]any) {
	message := &Message{
		Type:      "update",
		Channel:   channel,
		Timestamp: nowRFC3339(),
		Data:      data,
	}
	select {
	case h.broadcast <- message:
	default:
		logf("broadcast buffer full, dropping update for channel %s", channel)
	}
}

// ClientCount reports how many WebSocket clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (m *Message) toJSON() ([]byte, error) {
	return json.Marshal(m)
}
