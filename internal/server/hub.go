package server

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// writeTimeout bounds how long a slow client can hold up a broadcast.
const writeTimeout = 3 * time.Second

// Hub fans snapshot frames out to every connected viewer.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// Add registers a connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
}

// Remove forgets a connection.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast writes message to every client and drops the ones that fail.
// Writes run concurrently and outside the lock, so a slow client delays
// this call by at most writeTimeout and never blocks Add or Remove.
func (h *Hub) Broadcast(message []byte) {
	conns := h.snapshot()

	var wg sync.WaitGroup
	for _, conn := range conns {
		wg.Add(1)
		go func(conn *websocket.Conn) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				h.Remove(conn)
				_ = conn.CloseNow()
			}
		}(conn)
	}
	wg.Wait()
}

// CloseAll drops every client without waiting for close handshakes.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
		delete(h.clients, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.CloseNow()
	}
}

func (h *Hub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	return conns
}
