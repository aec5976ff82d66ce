package ws

import (
	"context"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// NotifyNewMessage pushes message.new to both participants, so the
// sender's other tabs stay in sync too.
func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	evt, err := NewEvent(EventTypeMessageNew, MessagePayload{Message: *msg})
	if err != nil {
		n.hub.log.Error(context.Background(), "marshal message event", "error", err)
		return
	}
	n.hub.SendToUsers([]uuid.UUID{msg.ReceiverID, msg.SenderID}, evt)
}
