package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/livp123/raidrec/internal/metrics"
	"github.com/livp123/raidrec/internal/utils/logger"
)

// Push message types.
const (
	MessageStatus            = "status"
	MessageCombatEvent       = "combat_event"
	MessageEventLog          = "event_log"
	MessageRecordingsUpdated = "recordings_updated"
)

const writeTimeout = 5 * time.Second

// Message is the envelope of every WebSocket push.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard is served by this process; other origins are local tools.
	CheckOrigin: func(*http.Request) bool { return true },
}

// SafeConn wraps a websocket.Conn with a mutex for concurrent writers.
type SafeConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewSafeConn wraps conn.
func NewSafeConn(conn *websocket.Conn) *SafeConn {
	return &SafeConn{conn: conn}
}

// WriteMessage sends a raw frame.
func (sc *SafeConn) WriteMessage(messageType int, data []byte) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	_ = sc.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return sc.conn.WriteMessage(messageType, data)
}

// WriteJSON sends v as a JSON text frame.
func (sc *SafeConn) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return sc.WriteMessage(websocket.TextMessage, data)
}

// Close closes the underlying connection.
func (sc *SafeConn) Close() error {
	return sc.conn.Close()
}

// Hub fans push messages out to every connected dashboard.
// Hub 将推送消息广播到所有已连接的页面。
type Hub struct {
	mu      sync.RWMutex
	clients map[*SafeConn]struct{}
	queue   chan []byte
}

// NewHub creates a hub. Call Run to start delivering.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*SafeConn]struct{}),
		queue:   make(chan []byte, 256),
	}
}

// Add registers a client.
func (h *Hub) Add(c *SafeConn) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WebClients.Set(float64(n))
}

// Remove unregisters and closes a client.
func (h *Hub) Remove(c *SafeConn) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		_ = c.Close()
	}
	metrics.WebClients.Set(float64(n))
}

// Len is the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. It never blocks; messages are
// dropped while the queue is full.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case h.queue <- data:
	default:
	}
}

// Run delivers queued messages until ctx ends, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	log := logger.Get(ctx)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case data := <-h.queue:
			for _, c := range h.snapshot() {
				if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
					log.Debugf("[WEB] Dropping WebSocket client: %v", err)
					h.Remove(c)
				}
			}
		}
	}
}

func (h *Hub) snapshot() []*SafeConn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*SafeConn, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *Hub) closeAll() {
	for _, c := range h.snapshot() {
		h.Remove(c)
	}
}
