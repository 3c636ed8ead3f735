package realtime

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/peercall/signal-server/models"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Subscribers only receive, so
	// inbound frames are small, but SDP-sized headroom costs nothing.
	maxMessageSize = 64 * 1024
)

// Client is one websocket subscriber to a room's message stream.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	RoomID string
	UserID string

	// Send carries stored messages from the hub to the write pump.
	Send chan *models.SignalingMessage
}

// Register attaches the client to the hub and starts its pumps.
func (c *Client) Register() {
	c.Hub.register <- c
	go c.writePump()
	go c.readPump()
}

// readPump discards inbound frames (subscribers talk to the server over
// HTTP, not the socket) but keeps the connection's read side alive for
// pong handling and close detection.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Debug("Subscriber read error")
			}
			break
		}
	}
}

// writePump writes hub messages and pings to the socket. It is the only
// writer on the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(msg); err != nil {
				logrus.WithError(err).Debug("Subscriber write error")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
