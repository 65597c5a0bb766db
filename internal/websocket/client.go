package websocket

import (
	"log/slog"
	"sync"
	"time"

	"marketplace-service/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Client is an authenticated connection. It only exists once the handshake
// credential has been verified; connections that fail authentication are
// closed before a Client is ever constructed, so every Client in the hub
// carries a resolved identity and role.
type Client struct {
	id     string
	userID uint
	name   string
	role   models.UserRole
	room   string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, user *models.User) *Client {
	return &Client{
		id:     uuid.New().String(),
		userID: user.ID,
		name:   user.Name,
		role:   user.Role,
		room:   RoomName(user.Role),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
	}
}

func (c *Client) UserID() uint {
	return c.userID
}

func (c *Client) Room() string {
	return c.room
}

// trySend enqueues an outbound frame without blocking the caller. A full
// buffer or a closed connection drops the frame; delivery is best effort.
func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		slog.Warn("Send buffer full, dropping frame", "connID", c.id, "userID", c.userID)
		return false
	}
}

// closeSend shuts the outbound queue, which in turn stops the write pump.
// Safe to call more than once.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump reads frames off the socket and hands them to the router, one at
// a time, preserving per-connection order. A panicking handler tears down
// this connection only, never the process.
func (c *Client) readPump(router *Router) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Handler panic", "connID", c.id, "userID", c.userID, "panic", r)
		}
		c.hub.notifyDisconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("Read error", "connID", c.id, "userID", c.userID, "error", err)
			}
			break
		}
		router.Dispatch(c, raw)
	}
}

// writePump drains the send queue onto the socket and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
