// internal/hub/websocket.go
package hub

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	maxMessageSize         = 4096
	webSocketWriteDeadline = 10 * time.Second
)

// Transport keepalive: the write pump pings on a ticker and the read
// deadline is refreshed by pongs. The ping period must stay below the
// read deadline.
var (
	webSocketReadDeadline = 60 * time.Second
	webSocketPingPeriod   = (webSocketReadDeadline * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins in production
		return true
	},
}

// ServeWs upgrades the HTTP connection and starts the client pumps. The
// connection stays unauthenticated until a valid auth frame arrives within
// the handshake window.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}

	client := newClient(h, conn)
	client.startAuthTimer(h.authWindow)

	go client.writePump()
	go client.readPump()
}

// readPump reads frames from the socket in receipt order. Exiting the loop,
// for any reason, tears the connection down.
func (c *Client) readPump() {
	defer c.hub.disconnect(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(webSocketReadDeadline))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(webSocketReadDeadline))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				identity, _, _ := c.session()
				c.hub.logger.Warnf("read error (identity=%q): %v", identity, err)
			}
			return
		}
		c.hub.handleMessage(c, raw)
	}
}

// writePump serializes all outbound frames for this connection and drives
// the transport-level keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(webSocketPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(webSocketWriteDeadline))
			if !ok {
				// Send channel closed: the hub is done with this connection.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(webSocketWriteDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
