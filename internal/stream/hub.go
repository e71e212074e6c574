// Package stream pushes encoded mesh frames to websocket preview clients.
package stream

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub tracks connected clients and broadcasts frames to them. Each
// connection has its own write lock.
type Hub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]*sync.Mutex
	latest    []byte
	broadcast chan []byte
	upgrader  websocket.Upgrader
	log       *zap.Logger
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger for connection events.
func WithLogger(l *zap.Logger) Option {
	return func(h *Hub) {
		h.log = l
	}
}

// NewHub creates a hub. Call Run to start broadcasting.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:   make(map[*websocket.Conn]*sync.Mutex),
		broadcast: make(chan []byte, 16),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run delivers published frames until ctx is cancelled, then closes
// every client connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case frame := <-h.broadcast:
			h.send(frame)
		}
	}
}

// Publish queues a frame for every client and keeps it as the frame new
// clients receive on connect. When the queue is full the frame is only
// kept as latest.
func (h *Hub) Publish(frame []byte) {
	h.mu.Lock()
	h.latest = frame
	h.mu.Unlock()

	select {
	case h.broadcast <- frame:
	default:
		h.log.Warn("broadcast queue full, frame dropped", zap.Int("bytes", len(frame)))
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler upgrades requests to websocket connections. A new client gets
// the latest frame immediately and stays registered until it disconnects.
// Messages from clients are read and discarded.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		lock := &sync.Mutex{}
		// Hold the connection lock until the latest frame is written so a
		// concurrent broadcast cannot overtake it.
		lock.Lock()
		h.mu.Lock()
		h.clients[conn] = lock
		latest := h.latest
		h.mu.Unlock()

		h.log.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))

		if latest != nil {
			err = conn.WriteMessage(websocket.BinaryMessage, latest)
		}
		lock.Unlock()
		if err != nil {
			h.remove(conn)
			return
		}

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.remove(conn)
	})
}

func (h *Hub) send(frame []byte) {
	h.mu.Lock()
	type target struct {
		conn *websocket.Conn
		lock *sync.Mutex
	}
	targets := make([]target, 0, len(h.clients))
	for c, l := range h.clients {
		targets = append(targets, target{c, l})
	}
	h.mu.Unlock()

	for _, t := range targets {
		t.lock.Lock()
		err := t.conn.WriteMessage(websocket.BinaryMessage, frame)
		t.lock.Unlock()
		if err != nil {
			h.log.Warn("send failed", zap.String("remote", t.conn.RemoteAddr().String()), zap.Error(err))
			h.remove(t.conn)
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	lock, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if !ok {
		return
	}

	lock.Lock()
	conn.Close()
	lock.Unlock()
	h.log.Info("client disconnected", zap.String("remote", conn.RemoteAddr().String()))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		h.remove(c)
	}
}
