package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds every push attempt so one stalled client can not stall an
// announcement loop.
const writeWait = 10 * time.Second

var ErrChannelClosed = errors.New("channel closed")

// Channel is one live push connection. The registry only needs this surface,
// which lets registry and dispatcher tests run on in-memory fakes.
type Channel interface {
	Send(payload []byte) error
	Close() error
	Closed() bool
}

// WebSocketChannel wraps a gorilla connection with a write lock: gorilla
// connections support one concurrent writer only.
type WebSocketChannel struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func NewWebSocketChannel(conn *websocket.Conn) *WebSocketChannel {
	return &WebSocketChannel{conn: conn}
}

// Send writes payload as one text message within writeWait. A failed or timed
// out write marks the channel closed; later sends are skipped immediately.
func (c *WebSocketChannel) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChannelClosed
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.closed = true
		c.conn.Close()
		return err
	}
	return nil
}

func (c *WebSocketChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *WebSocketChannel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
