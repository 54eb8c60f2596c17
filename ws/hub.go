package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// envelope is the wire framing for every socket event, both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub tracks connected clients and their room subscriptions and fans events
// out to them. It implements services.Broadcaster. Delivery is best-effort:
// the payload is encoded once and dropped for any client whose send buffer
// is full; a client that misses an event recovers via a REST re-fetch.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

// unregister drops the client from every room and closes its send channel.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	for room, members := range h.rooms {
		if members[c] {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	close(c.send)
}

// join subscribes the client to a room. Sockets are never force-removed
// from rooms while connected; REST membership checks remain the read-access
// authority.
func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
}

// Publish delivers one event to every socket currently joined to the room.
func (h *Hub) Publish(room string, event string, payload interface{}) {
	frame, err := json.Marshal(outEnvelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("⚠️  ws: encode %s: %v", event, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		c.enqueue(frame)
	}
}

// PublishAll delivers one event to every connected socket.
func (h *Hub) PublishAll(event string, payload interface{}) {
	frame, err := json.Marshal(outEnvelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("⚠️  ws: encode %s: %v", event, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.enqueue(frame)
	}
}

// RoomSize reports how many sockets are joined to a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
