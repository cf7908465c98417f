// Package ws pushes live order events to staff dashboards. Each store
// has its own room; a dashboard subscribes to the store it is showing.
package ws

import (
	"encoding/json"
	"sync"
)

// Event types emitted by the order endpoints.
const (
	EventOrderCreated     = "order.created"
	EventOrderUpdated     = "order.updated"
	EventOrderItemUpdated = "order_item.updated"
)

// Event is the wire format of a broadcast message.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type storeEvent struct {
	StoreID string
	Event   Event
}

// Hub maintains the set of active clients grouped per store and routes
// events to them.
type Hub struct {
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *storeEvent

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *storeEvent, 256),
	}
}

// Run is the hub's main loop; call it as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.storeID] == nil {
				h.rooms[client.storeID] = make(map[*Client]bool)
			}
			h.rooms[client.storeID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.storeID]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.storeID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[event.StoreID]

			message, err := json.Marshal(event.Event)
			if err != nil {
				h.mu.Unlock()
				continue
			}

			for client := range clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop the connection rather than
					// blocking every other client in the room.
					close(client.send)
					delete(h.rooms[event.StoreID], client)
					if len(h.rooms[event.StoreID]) == 0 {
						delete(h.rooms, event.StoreID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToStore sends an event to every client watching a store.
func (h *Hub) BroadcastToStore(storeID string, event Event) {
	h.broadcast <- &storeEvent{StoreID: storeID, Event: event}
}
