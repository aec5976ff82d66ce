package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message between two users. At least one of Text or
// Image is set.
type Message struct {
	ID         uuid.UUID `json:"_id"`
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	Text       *string   `json:"text,omitempty"`
	Image      *string   `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Involves reports whether userID is the sender or the receiver.
func (m *Message) Involves(userID uuid.UUID) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}
