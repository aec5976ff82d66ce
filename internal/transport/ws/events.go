package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeTypingStart = "typing.start"
	EventTypeTypingStop  = "typing.stop"
	EventTypePing        = "ping"
)

// Event types - Server → Client
const (
	EventTypeMessageNew  = "message.new"
	EventTypeTyping      = "typing"
	EventTypePresence    = "presence"
	EventTypeOnlineUsers = "presence.online"
	EventTypePong        = "pong"
	EventTypeError       = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type TypingRequest struct {
	To uuid.UUID `json:"to"`
}

// --- Server → Client payloads ---

type MessagePayload struct {
	domain.Message
}

type TypingPayload struct {
	UserID   uuid.UUID `json:"userId"`
	IsTyping bool      `json:"isTyping"`
}

type PresencePayload struct {
	UserID uuid.UUID `json:"userId"`
	Status string    `json:"status"` // "online" | "offline"
}

type OnlineUsersPayload struct {
	UserIDs []uuid.UUID `json:"userIds"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
