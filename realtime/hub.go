package realtime

import (
	"github.com/sirupsen/logrus"

	"github.com/peercall/signal-server/models"
)

// Hub fans stored signaling messages out to websocket subscribers, one
// subscriber set per room. A single goroutine (Run) owns all state, so no
// locking is needed. Delivery is best-effort: a subscriber that is not
// connected simply misses the push and catches up through the poll endpoint.
type Hub struct {
	// rooms maps room id -> connected subscribers.
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	publish    chan *models.SignalingMessage
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan *models.SignalingMessage, 64),
	}
}

// Publish hands a stored message to the hub for delivery. Implements
// services.Publisher. Never blocks the caller indefinitely; the channel is
// buffered and drained by Run.
func (h *Hub) Publish(msg *models.SignalingMessage) {
	h.publish <- msg
}

// Run is the hub's main loop. Start it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			subs, ok := h.rooms[client.RoomID]
			if !ok {
				subs = make(map[*Client]bool)
				h.rooms[client.RoomID] = subs
			}
			subs[client] = true
			logrus.WithFields(logrus.Fields{
				"room_id": client.RoomID,
				"user_id": client.UserID,
			}).Debug("Subscriber registered")

		case client := <-h.unregister:
			if subs, ok := h.rooms[client.RoomID]; ok {
				if subs[client] {
					delete(subs, client)
					close(client.Send)
				}
				if len(subs) == 0 {
					delete(h.rooms, client.RoomID)
				}
			}
			logrus.WithFields(logrus.Fields{
				"room_id": client.RoomID,
				"user_id": client.UserID,
			}).Debug("Subscriber unregistered")

		case msg := <-h.publish:
			h.deliver(msg)
		}
	}
}

// deliver pushes a message to its room's subscribers. Directed messages go
// only to the addressed user; broadcasts go to every subscriber, the sender
// included, matching what a poll of the log would return. The persisted log
// is never filtered, only the push is.
func (h *Hub) deliver(msg *models.SignalingMessage) {
	subs, ok := h.rooms[msg.RoomID]
	if !ok {
		return
	}
	for client := range subs {
		if !msg.Broadcast() && client.UserID != *msg.ToUserID {
			continue
		}
		select {
		case client.Send <- msg:
		default:
			// Slow consumer: drop the push, the poll endpoint catches it up.
			logrus.WithFields(logrus.Fields{
				"room_id": msg.RoomID,
				"user_id": client.UserID,
			}).Warn("Subscriber send buffer full, dropping push")
		}
	}
}
