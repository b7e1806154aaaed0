package api

import "sync"

// Hub tracks open sockets so board changes reach every client.
type Hub struct {
	mu          sync.RWMutex
	connections map[*Connection]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{connections: make(map[*Connection]bool)}
}

func (h *Hub) add(c *Connection) {
	h.mu.Lock()
	h.connections[c] = true
	h.mu.Unlock()
}

// remove unregisters c and closes its send channel. No broadcast can reach
// c after remove returns.
func (h *Hub) remove(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections[c] {
		delete(h.connections, c)
		close(c.send)
	}
}

// Count returns the number of open sockets.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Broadcast sends a message to every client.
func (h *Hub) Broadcast(msg *ServerMessage) {
	h.BroadcastExcept(nil, msg)
}

// BroadcastExcept sends a message to every client but exclude.
func (h *Hub) BroadcastExcept(exclude *Connection, msg *ServerMessage) {
	data, err := encodeMessage(msg)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections {
		if c != exclude {
			c.enqueue(data)
		}
	}
}
