package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/interfaces"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const writeTimeout = 10 * time.Second

// WebSocketHandler broadcasts generation progress events to connected
// browsers. It implements interfaces.EventPublisher so services can publish
// without knowing about websockets.
type WebSocketHandler struct {
	logger arbor.ILogger

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewWebSocketHandler creates the broadcast hub.
func NewWebSocketHandler(logger arbor.ILogger) *WebSocketHandler {
	return &WebSocketHandler{
		logger:  logger,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

var _ interfaces.EventPublisher = (*WebSocketHandler)(nil)

// HandleWebSocket handles GET /ws upgrade requests.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().
		Str("remote", r.RemoteAddr).
		Int("clients", count).
		Msg("WebSocket client connected")

	// Reader loop exists only to detect disconnects; clients never send
	// meaningful messages.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish broadcasts an event to every connected client. A client whose
// write fails is dropped.
func (h *WebSocketHandler) Publish(event interfaces.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	h.mu.RLock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, mu := range h.clients {
		conns[conn] = mu
	}
	h.mu.RUnlock()

	for conn, mu := range conns {
		mu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := conn.WriteJSON(event)
		mu.Unlock()

		if err != nil {
			h.logger.Debug().Err(err).Msg("WebSocket write failed, dropping client")
			h.remove(conn)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *WebSocketHandler) Close() {
	h.mu.Lock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]*sync.Mutex)
	h.mu.Unlock()
}

func (h *WebSocketHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}
