package dashboard

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 64 * 1024
)

// Client is one connected dashboard WebSocket session.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan *Message
}

type subscribeRequest struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

// NewClient wraps an upgraded connection with a unique client id.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan *Message, 256),
	}
}

// Run starts the client's read and write pumps.
func (c *Client) Run() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, body, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logf("client %s: unexpected close: %v", c.id, err)
			}
			return
		}

		var req subscribeRequest
		if err := json.Unmarshal(body, &req); err != nil {
			c.sendError("INVALID_MESSAGE", "failed to parse message")
			continue
		}

		switch req.Type {
		case "subscribe":
			if len(req.Channels) == 0 {
				c.sendError("INVALID_SUBSCRIBE", "at least one channel is required")
				continue
			}
			c.hub.Subscribe(c, req.Channels)
		case "unsubscribe":
			c.hub.Unsubscribe(c, req.Channels)
		case "pong":
		default:
			logf("client %s: unknown message type %q", c.id, req.Type)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			body, err := message.toJSON()
			if err != nil {
				logf("client %s: failed to marshal message: %v", c.id, err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, body); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendError(code, message string) {
	errMsg := &Message{
		Type:      "error",
		Timestamp: nowRFC3339(),
		Error:     &ErrorDetails{Code: code, Message: message},
	}
	select {
	case c.send <- errMsg:
	default:
		logf("client %s: failed to send error, buffer full", c.id)
	}
}
