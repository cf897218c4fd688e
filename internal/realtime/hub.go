// Package realtime pushes documents' events to websocket subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/photon/internal/events"
	mm "github.com/Decentr-net/photon/internal/middleware"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// DefaultBufferSize is a count of events queued per client before it is considered slow.
	DefaultBufferSize = 64
)

var log = logrus.WithField("layer", "realtime").WithField("package", "realtime")

// Guard decides if viewer can see content of owner.
type Guard interface {
	CanView(ctx context.Context, viewerID, ownerID string) (bool, error)
}

type client struct {
	userID   string
	conn     *websocket.Conn
	channels map[string]struct{}
	send     chan []byte
	once     sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub keeps websocket clients and broadcasts events to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	guard   Guard

	upgrader   websocket.Upgrader
	bufferSize int
}

// NewHub creates new instance of Hub.
// Events owned by a user are delivered only to subscribers the guard allows to see them.
func NewHub(bufferSize int, g Guard) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	return &Hub{
		clients: map[*client]struct{}{},
		guard:   g,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		bufferSize: bufferSize,
	}
}

// Len returns count of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Publish sends the event to every client subscribed to its channel and allowed by event's scope.
// Clients which can not keep up are disconnected.
func (h *Hub) Publish(ctx context.Context, e *events.Event) error {
	scope := e.Scope

	out := *e
	out.Scope = nil

	b, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	var subscribed []*client

	h.mu.RLock()
	for c := range h.clients {
		if _, ok := c.channels[e.Channel]; ok {
			subscribed = append(subscribed, c)
		}
	}
	h.mu.RUnlock()

	var slow []*client

	allowed := map[string]bool{}
	for _, c := range subscribed {
		ok, checked := allowed[c.userID]
		if !checked {
			ok = h.allowed(ctx, scope, c.userID)
			allowed[c.userID] = ok
		}
		if !ok {
			continue
		}

		h.mu.RLock()
		if _, registered := h.clients[c]; registered {
			select {
			case c.send <- b:
			default:
				slow = append(slow, c)
			}
		}
		h.mu.RUnlock()
	}

	for _, c := range slow {
		log.WithField("remote", c.conn.RemoteAddr().String()).Warn("dropping slow client")
		h.unregister(c)
	}

	return nil
}

func (h *Hub) allowed(ctx context.Context, scope *events.Scope, userID string) bool {
	if scope == nil {
		return true
	}

	if scope.Audience != nil {
		for _, v := range scope.Audience {
			if v == userID {
				return true
			}
		}
		return false
	}

	if scope.Owner == "" || scope.Owner == userID {
		return true
	}

	if h.guard == nil || userID == "" {
		return false
	}

	ok, err := h.guard.CanView(ctx, userID, scope.Owner)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("failed to check access")
		return false
	}

	return ok
}

// ServeHTTP upgrades connection and subscribes it to channels from the query.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	channels := r.URL.Query()["channels"]
	if len(channels) == 0 {
		http.Error(w, `{"error":"channels are required"}`, http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("failed to upgrade connection")
		return
	}

	c := &client{
		userID:   mm.GetUserID(r.Context()),
		conn:     conn,
		channels: make(map[string]struct{}, len(channels)),
		send:     make(chan []byte, h.bufferSize),
	}
	for _, v := range channels {
		c.channels[v] = struct{}{}
	}

	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	c.close()
}

// readPump discards incoming messages and unregisters the client on disconnect.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case b, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
