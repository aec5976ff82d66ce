package ws

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/logging"
)

// Hub manages all active WebSocket clients and routes events to users.
// A user may hold several connections (tabs); presence flips to online on
// the first and to offline when the last one closes.
type Hub struct {
	log logging.Logger

	// clients maps userID → open connections. Only touched by Run.
	clients map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	deliver    chan *delivery
	query      chan chan []uuid.UUID
	done       chan struct{}
}

type delivery struct {
	userIDs   []uuid.UUID
	data      []byte
	excludeID *uuid.UUID // optional: skip this user (e.g. typing sender)
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		log:        log.With("component", "ws-hub"),
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan *delivery, 256),
		query:      make(chan chan []uuid.UUID),
		done:       make(chan struct{}),
	}
}

// Run is the Hub's event loop. It returns when ctx is cancelled, after
// closing every connection.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, conns := range h.clients {
				for client := range conns {
					client.close()
				}
			}
			h.clients = map[uuid.UUID]map[*Client]struct{}{}
			return nil

		case client := <-h.register:
			conns, online := h.clients[client.userID]
			if !online {
				conns = make(map[*Client]struct{})
				h.clients[client.userID] = conns
			}
			conns[client] = struct{}{}
			h.log.Info(ctx, "user connected", "user_id", client.userID, "users", len(h.clients))

			h.sendOnlineUsers(client)
			if !online {
				h.broadcastPresence(client.userID, "online")
			}

		case client := <-h.unregister:
			h.remove(ctx, client)

		case d := <-h.deliver:
			for _, userID := range d.userIDs {
				if d.excludeID != nil && userID == *d.excludeID {
					continue
				}
				for client := range h.clients[userID] {
					select {
					case client.send <- d.data:
					default:
						// Client buffer full - disconnect
						h.remove(ctx, client)
					}
				}
			}

		case reply := <-h.query:
			reply <- h.onlineUserIDs()
		}
	}
}

func (h *Hub) remove(ctx context.Context, client *Client) {
	conns, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	client.close()

	if len(conns) == 0 {
		delete(h.clients, client.userID)
		h.log.Info(ctx, "user disconnected", "user_id", client.userID, "users", len(h.clients))
		h.broadcastPresence(client.userID, "offline")
	}
}

// SendToUsers queues an event for every connection of the given users.
// Users that are not connected are skipped.
func (h *Hub) SendToUsers(userIDs []uuid.UUID, event *Event) {
	h.send(&delivery{userIDs: userIDs}, event)
}

func (h *Hub) send(d *delivery, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error(context.Background(), "marshal event", "type", event.Type, "error", err)
		return
	}
	d.data = data

	select {
	case h.deliver <- d:
	case <-h.done:
	}
}

// OnlineUsers returns the ids of connected users, sorted.
func (h *Hub) OnlineUsers() []uuid.UUID {
	reply := make(chan []uuid.UUID, 1)
	select {
	case h.query <- reply:
		return <-reply
	case <-h.done:
		return nil
	}
}

// HandleTyping forwards typing start/stop to the addressed user.
func (h *Hub) HandleTyping(sender *Client, isTyping bool, to uuid.UUID) {
	evt, err := NewEvent(EventTypeTyping, TypingPayload{
		UserID:   sender.userID,
		IsTyping: isTyping,
	})
	if err != nil {
		return
	}

	h.send(&delivery{userIDs: []uuid.UUID{to}, excludeID: &sender.userID}, evt)
}

func (h *Hub) onlineUserIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func (h *Hub) sendOnlineUsers(client *Client) {
	evt, err := NewEvent(EventTypeOnlineUsers, OnlineUsersPayload{UserIDs: h.onlineUserIDs()})
	if err != nil {
		return
	}
	client.enqueue(evt)
}

// broadcastPresence sends online/offline to everyone else.
func (h *Hub) broadcastPresence(userID uuid.UUID, status string) {
	evt, err := NewEvent(EventTypePresence, PresencePayload{
		UserID: userID,
		Status: status,
	})
	if err != nil {
		return
	}
	for id, conns := range h.clients {
		if id == userID {
			continue
		}
		for client := range conns {
			client.enqueue(evt)
		}
	}
}
