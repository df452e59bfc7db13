package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"slaphard/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Client is one live socket: a gorilla/websocket connection paired with the
// orchestrator identity (socketID, userID) the hub and orchestrator use to
// address it.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	SocketID string
	UserID   string
}

func newClient(hub *Hub, conn *websocket.Conn, socketID, userID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		SocketID: socketID,
		UserID:   userID,
	}
}

// Start launches the client's read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump decodes inbound envelopes and hands them to the orchestrator,
// until the connection closes or misbehaves.
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
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).WithField("socket_id", c.SocketID).Warn("websocket read error")
			}
			break
		}

		var env protocol.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.sendError("INTERNAL_ERROR", "invalid message envelope")
			continue
		}
		c.hub.orchestrator.Dispatch(context.Background(), c.SocketID, c.UserID, env)
	}
}

// writePump drains queued outbound frames to the connection and keeps it
// alive with periodic pings.
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

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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

// enqueue marshals env and queues it for delivery, dropping it if the
// client's buffer is saturated rather than blocking the hub.
func (c *Client) enqueue(env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		c.hub.log.WithError(err).Error("failed to marshal outbound envelope")
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	c.enqueue(protocol.NewEnvelope(protocol.EvtError, protocol.ErrorPayload{Code: code, Message: message}))
}
