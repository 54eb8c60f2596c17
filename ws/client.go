package ws

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// pongWait must outlive a couple of missed heartbeats before the
	// connection is considered dead and the user decays to offline.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	writeWait  = 10 * time.Second
	readLimit  = int64(16 << 10)

	sendBuffer = 64
)

// Client is one websocket connection. userID is zero until the socket
// identifies itself; the socket layer trusts the claimed identity, the REST
// session token having already gated the page that opens the socket.
type Client struct {
	hub      *Hub
	pipeline *Pipeline
	conn     *websocket.Conn
	send     chan []byte
	// userID is written by the read pump on identify and read from hub
	// publish goroutines, so access goes through the accessors below.
	userID atomic.Uint64
}

func (c *Client) setUser(id uint) { c.userID.Store(uint64(id)) }
func (c *Client) user() uint      { return uint(c.userID.Load()) }

func newClient(hub *Hub, pipeline *Pipeline, conn *websocket.Conn) *Client {
	return &Client{
		hub:      hub,
		pipeline: pipeline,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
	}
}

// enqueue hands a pre-encoded frame to the writer, dropping it when the
// buffer is full. Callers hold the hub lock, so this must never block.
func (c *Client) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		log.Printf("⚠️  ws: send buffer full for user %d, frame dropped", c.user())
	}
}

// readPump reads and dispatches inbound events until the connection dies,
// then tears down presence and room state.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		if id := c.user(); id != 0 {
			c.pipeline.Presence.SetOffline(context.Background(), id)
			log.Printf("🔴 user %d is now offline", id)
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if id := c.user(); id != 0 {
			c.pipeline.Presence.Heartbeat(context.Background(), id)
		}
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️  ws: read error for user %d: %v", c.user(), err)
			}
			return
		}
		c.pipeline.dispatch(c, raw)
	}
}

// writePump drains the send buffer and keeps the connection alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
