package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"

	"github.com/manwah-pos/api/internal/store"
)

// TopicStaff receives every order event. Customers subscribe to their
// table's topic instead.
const TopicStaff = "staff"

// TableTopic is the room for one table's customer sessions.
func TableTopic(table int) string {
	return "table:" + strconv.Itoa(table)
}

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// topicEvent routes an event to one room
type topicEvent struct {
	Topic string
	Event Event
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by topic
	rooms map[string]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *topicEvent

	// Closed when Run returns
	done chan struct{}

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *topicEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and returns when ctx is done.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.topic] == nil {
				h.rooms[client.topic] = make(map[*Client]bool)
			}
			h.rooms[client.topic][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			// Marshal event to JSON once
			message, err := json.Marshal(event.Event)
			if err != nil {
				slog.Error("ws: encode event failed", "type", event.Event.Type, "error", err)
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.Topic] {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, drop it
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.rooms[client.topic]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	// Clean up empty rooms
	if len(clients) == 0 {
		delete(h.rooms, client.topic)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, clients := range h.rooms {
		for client := range clients {
			close(client.send)
		}
		delete(h.rooms, topic)
	}
}

// BroadcastToTopic queues an event for every client in topic. When the queue
// is full the event is dropped rather than stalling the caller.
func (h *Hub) BroadcastToTopic(topic string, event Event) {
	select {
	case h.broadcast <- &topicEvent{Topic: topic, Event: event}:
	default:
		slog.Warn("ws: broadcast queue full, dropping event", "topic", topic, "type", event.Type)
	}
}

// Notify forwards a store event to staff and to the order's table.
func (h *Hub) Notify(e store.Event) {
	payload, err := json.Marshal(e.Order)
	if err != nil {
		slog.Error("ws: encode order failed", "order_id", e.Order.ID, "error", err)
		return
	}
	ev := Event{Type: e.Type, Payload: payload}
	h.BroadcastToTopic(TopicStaff, ev)
	h.BroadcastToTopic(TableTopic(e.Order.TableNumber), ev)
}
