package dashboard

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests into dashboard WebSocket clients.
type Handler struct {
	hub *Hub
}

// NewHandler builds a Handler bound to hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// ServeHTTP upgrades the connection and registers a new client with the hub.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logf("failed to upgrade connection: %v", err)
		return
	}

	client := NewClient(h.hub, conn)
	h.hub.register <- client
	client.Run()
	logf("client %s connected", client.id)
}
