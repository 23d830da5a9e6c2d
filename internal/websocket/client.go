package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 512
	sendBuffer     = 64
)

// Client is one browser tab listening for a user's notifications.
// Traffic is one way: the server writes events, inbound frames only keep the
// connection alive.
type Client struct {
	id      string
	userKey string
	conn    *websocket.Conn
	hub     *Hub
	logger  zerolog.Logger

	outbox chan []byte
	done   chan struct{}
	once   sync.Once
}

// NewClient wraps an upgraded connection for userKey
func NewClient(conn *websocket.Conn, userKey string, hub *Hub) *Client {
	id := uuid.NewString()
	return &Client{
		id:      id,
		userKey: userKey,
		conn:    conn,
		hub:     hub,
		logger:  log.With().Str("component", "ws_client").Str("client_id", id).Str("user_key", userKey).Logger(),
		outbox:  make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
}

func (c *Client) ID() string      { return c.id }
func (c *Client) UserKey() string { return c.userKey }

// Send queues data without blocking. A full outbox means the tab stopped
// reading, and the message is dropped.
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.outbox <- data:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		return ErrClientBackedUp
	}
}

// Close is idempotent
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) IsClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// ReadPump discards inbound frames until the peer goes away, then
// unregisters the client. Run it in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
	_ = extend("")
	c.conn.SetPongHandler(extend)

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("WebSocket closed unexpectedly")
			}
			return
		}
	}
}

// WritePump drains the outbox and keeps the peer alive with pings.
// Run it in its own goroutine.
func (c *Client) WritePump() {
	pings := time.NewTicker(pingPeriod)
	defer func() {
		pings.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case msg := <-c.outbox:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.logger.Warn().Err(err).Msg("WebSocket write failed")
				return
			}
		case <-pings.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
