package core

import "sync"

// Hub delivers events to subsets of the live connections. Delivery is
// best-effort and fire-and-forget: a client whose event buffer is full
// misses the event rather than blocking the sender. Events queued for one
// client keep the order in which they were fired, since a single write
// loop drains each Events channel.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub constructs a hub with no clients.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register adds a client to the delivery set. Re-registering the same id
// replaces the previous client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes the client with the given id. Unknown ids are a no-op.
// The Events channel is not closed; the transport's write loop exits via
// its own context.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, connID)
}

// BroadcastAll delivers an event to every registered connection.
func (h *Hub) BroadcastAll(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		send(c, ev)
	}
}

// BroadcastOthers delivers an event to every registered connection except
// excludeID, so a sender never echoes its own action back through the
// fan-out path.
func (h *Hub) BroadcastOthers(ev Event, excludeID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		if id == excludeID {
			continue
		}
		send(c, ev)
	}
}

// Unicast delivers an event to exactly one connection. Unknown ids are a
// no-op: the target may have disconnected already.
func (h *Hub) Unicast(ev Event, connID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[connID]; ok {
		send(c, ev)
	}
}

func send(c *Client, ev Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}
