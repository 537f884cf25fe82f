// Package stream fans played deltas out to WebSocket clients.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ccollicutt/logplay/pkg/parser"
)

// DefaultWriteTimeout bounds each frame write so one stuck client cannot hold up playback.
const DefaultWriteTimeout = 5 * time.Second

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Hub is an http.Handler that upgrades connections and broadcasts deltas to them.
type Hub struct {
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	logger       *zap.SugaredLogger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates an empty hub. A nil logger discards logs.
func NewHub(logger *zap.SugaredLogger) *Hub {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		writeTimeout: DefaultWriteTimeout,
		logger:       logger,
		clients:      make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debugw("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{conn: conn}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Infow("stream client connected", "remote", r.RemoteAddr)

	// Clients only listen; reading drives ping/pong and notices disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
	h.logger.Infow("stream client disconnected", "remote", r.RemoteAddr)
}

// Broadcast writes delta to every client. Clients whose write fails are dropped.
func (h *Hub) Broadcast(delta parser.Delta) error {
	data, err := json.Marshal(delta)
	if err != nil {
		return fmt.Errorf("encoding delta: %w", err)
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := h.write(c, data); err != nil {
			h.logger.Debugw("dropping stream client", "error", err)
			h.remove(c)
		}
	}
	return nil
}

func (h *Hub) write(c *client, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		_ = c.conn.Close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "replay finished"),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	}
	return nil
}
