package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/logging"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
)

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID
	log    logging.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		log:    hub.log.With("user_id", userID),
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// enqueue drops the event when the buffer is full.
func (c *Client) enqueue(evt *Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// ReadPump reads events from the WebSocket until the peer goes away or
// ctx is cancelled.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		var event Event
		err := wsjson.Read(ctx, c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.log.Debug(ctx, "client closed connection")
			} else if ctx.Err() == nil {
				c.log.Warn(ctx, "read error", "error", err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued events and keeps the connection alive with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(wctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.log.Warn(ctx, "write error", "error", err)
				return
			}

		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				c.log.Warn(ctx, "ping error", "error", err)
				return
			}

		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeTypingStart, EventTypeTypingStop:
		var p TypingRequest
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.To == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "typing events need a target user")
			return
		}
		c.hub.HandleTyping(c, event.Type == EventTypeTypingStart, p.To)

	case EventTypePing:
		c.enqueue(&Event{Type: EventTypePong, Timestamp: time.Now().Unix()})

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	c.enqueue(evt)
}
