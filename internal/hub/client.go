// internal/hub/client.go
package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/collabdrive/realtime/internal/metrics"
)

const sendBufferSize = 256

// Client is one WebSocket connection. It implements presence.Channel: the
// registry holds the client as an opaque send/close capability and never
// touches the socket itself.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu          sync.Mutex
	closed      bool
	authed      bool
	identity    string
	displayName string
	authTimer   *time.Timer
}

func newClient(h *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Send queues data for delivery. Never blocks: a full buffer means the
// consumer is dead or hopelessly behind, so the connection is closed and
// the event dropped.
func (c *Client) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		metrics.RecordDrop()
		return
	}
	select {
	case c.send <- data:
	default:
		metrics.RecordDrop()
		c.closeLocked()
	}
}

// Close force-closes the connection. Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	if c.authTimer != nil {
		c.authTimer.Stop()
	}
	close(c.send)
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// setSession fixes the client's identity for the rest of its lifetime and
// cancels the handshake-window timer.
func (c *Client) setSession(identity, displayName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authed = true
	c.identity = identity
	c.displayName = displayName
	if c.authTimer != nil {
		c.authTimer.Stop()
		c.authTimer = nil
	}
}

func (c *Client) session() (identity, displayName string, authed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity, c.displayName, c.authed
}

func (c *Client) isAuthed() bool {
	_, _, authed := c.session()
	return authed
}

func (c *Client) startAuthTimer(window time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.authTimer = time.AfterFunc(window, func() {
		if !c.isAuthed() {
			c.hub.logger.Warn("closing connection: handshake window expired")
			c.Close()
		}
	})
}
