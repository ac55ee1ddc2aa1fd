// Package client implements the connection side of the chat core: dialing
// the live feed, pulling history, and reconciling both into one ordered
// view through a Session.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/venturehub/community-chat/domain"
)

// Frame mirrors the server's outbound wire shape.
type Frame struct {
	Type    string                  `json:"type"`
	Message *domain.EnrichedMessage `json:"message,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

type submission struct {
	SenderID string `json:"senderId"`
	Body     string `json:"body"`
}

// Connection owns one WebSocket and exposes the live feed as channels.
// Feed closes when the transport does.
type Connection struct {
	conn *websocket.Conn
	log  *slog.Logger

	writeMu sync.Mutex

	Feed   chan domain.EnrichedMessage
	Errors chan string // submission failures reported by the server
}

// Dial opens the live feed connection and starts the read loop.
func Dial(ctx context.Context, url string, bufferSize int, log *slog.Logger) (*Connection, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Connection{
		conn:   conn,
		log:    log,
		Feed:   make(chan domain.EnrichedMessage, bufferSize),
		Errors: make(chan string, bufferSize),
	}
	go c.readLoop()
	return c, nil
}

func (c *Connection) readLoop() {
	defer close(c.Feed)

	for {
		var frame Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("live feed closed unexpectedly", "error", err)
			}
			return
		}

		switch frame.Type {
		case "message":
			if frame.Message != nil {
				c.Feed <- *frame.Message
			}
		case "error":
			select {
			case c.Errors <- frame.Error:
			default:
				c.log.Warn("dropping server error report", "error", frame.Error)
			}
		}
	}
}

// Submit sends one submission. The message shows up in the view only once
// it round-trips through the broadcast; there is no optimistic insert.
func (c *Connection) Submit(externalSenderID, body string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(submission{SenderID: externalSenderID, Body: body})
}

func (c *Connection) Close() error {
	return c.conn.Close()
}
