package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	// Pantry updates are small and infrequent; a short buffer is plenty
	// before the hub starts dropping messages for a stalled client.
	sendBufferSize = 16

	keepAliveInterval = 30 * time.Second
)

// Client is one connected UI. It receives pantry change events and
// expiration check summaries; it never sends anything meaningful back.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	send chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Run serves the connection until it closes, keeping the client registered
// with the hub for the duration.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writeLoop(ctx)
	c.readLoop(ctx)
}

// readLoop drains incoming frames. Clients are listen-only, so anything
// received is discarded; a read error means the connection is gone.
func (c *Client) readLoop(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// writeLoop forwards hub messages to the connection and pings it on an
// interval so dead home-network connections get noticed.
func (c *Client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				// Hub unregistered us
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
