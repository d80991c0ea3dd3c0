// Package chat implements the driftchat client: a WebSocket connection to a
// chat backend plus typed connectivity and message events.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/driftchat/driftchat/internal/logging"
)

// ErrNotConnected is returned by operations that require an open connection.
var ErrNotConnected = errors.New("chat: not connected")

const handshakeTimeout = 10 * time.Second

// Client is a WebSocket chat client. It maintains a single connection to the
// backend, emits typed connectivity events, and delivers inbound messages
// to subscribers. All methods are safe for concurrent use.
type Client struct {
	url  string
	user string
	log  *logging.Logger

	events Emitter

	mu            sync.Mutex
	conn          *websocket.Conn
	connID        string
	connected     bool
	everConnected bool
	cancelRead    context.CancelFunc
}

// NewClient creates a client for the given WebSocket URL, identifying as
// user. The client does not connect until OpenConnection is called.
func NewClient(url, user string, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		url:  url,
		user: user,
		log:  log.Sub("chat"),
	}
}

// Subscribe registers fn for events of type t. Each call returns its own
// subscription handle; canceling one never affects another registration.
func (c *Client) Subscribe(t EventType, fn func(Event)) *Subscription {
	return c.events.Subscribe(t, fn)
}

// Connected reports whether the client currently holds an open connection.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// OpenConnection runs the full session establishment: dial, hello
// handshake, read loop. The first successful call emits
// EventConnectionEstablished; later calls (after a drop) emit
// EventConnectionRecovered. A no-op while already connected.
func (c *Client) OpenConnection(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", c.url, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	connID := uuid.New().String()
	if err := conn.WriteJSON(frame{Type: frameTypeHello, ConnID: connID, User: c.user}); err != nil {
		conn.Close()
		return fmt.Errorf("hello handshake: %w", err)
	}

	readCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	recovered := c.everConnected
	c.conn = conn
	c.connID = connID
	c.connected = true
	c.everConnected = true
	c.cancelRead = cancel
	c.mu.Unlock()

	go c.readLoop(readCtx, conn)

	c.log.Info().Str("connId", connID).Bool("recovered", recovered).Msg("connection open")
	if recovered {
		c.events.Emit(Event{Type: EventConnectionRecovered, Online: true})
	} else {
		c.events.Emit(Event{Type: EventConnectionEstablished, Online: true})
	}
	return nil
}

// SetOnlineStatus sends a lightweight presence notification to the backend.
// It does not (re)establish the connection; use OpenConnection for that.
func (c *Client) SetOnlineStatus(_ context.Context, online bool) error {
	return c.writeFrame(frame{Type: frameTypeStatus, Online: &online})
}

// SendMessage publishes a message to the given channel.
func (c *Client) SendMessage(ch Channel, text string) error {
	msg := &Message{
		ID:     uuid.New().String(),
		CID:    ch.CID(),
		Sender: c.user,
		Text:   text,
		SentAt: time.Now(),
	}
	return c.writeFrame(frame{Type: frameTypeMessage, Message: msg})
}

// Close tears down the connection without emitting a connectivity event.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.cancelRead != nil {
		c.cancelRead()
		c.cancelRead = nil
	}
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// writeFrame serializes writes through the client mutex.
func (c *Client) writeFrame(f frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected || c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.WriteJSON(f)
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			c.mu.Lock()
			current := c.conn == conn
			if current {
				c.connected = false
			}
			c.mu.Unlock()

			// a drop of the current connection is a connectivity flip;
			// an explicit Close is not
			if current && ctx.Err() == nil {
				c.log.Warn().Err(err).Msg("connection lost")
				c.events.Emit(Event{Type: EventConnectionChanged, Online: false})
			}
			return
		}

		switch f.Type {
		case frameTypeMessage:
			if f.Message != nil {
				c.events.Emit(Event{Type: EventMessageNew, Message: f.Message})
			}
		case frameTypeStatus:
			if f.Online != nil {
				c.events.Emit(Event{Type: EventConnectionChanged, Online: *f.Online})
			}
		}
	}
}
