// Package realtime pushes order events to connected dashboards.
//
// Hub is the registry of live connections, keyed by user id; a user may have
// several tabs open. Sends fan out concurrently, one goroutine per
// connection, each bounded by a write deadline, so a slow client cannot hold
// up the others. A connection whose write fails is removed after the round.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/observability"
)

// DefaultWriteWait bounds a single message write.
const DefaultWriteWait = 10 * time.Second

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type client struct {
	id     string
	userID uint
	role   domain.Role
	conn   Conn

	// gorilla connections allow one concurrent writer
	mu sync.Mutex
}

func (c *client) write(v any, wait time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(wait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// Hub tracks connections and delivers messages to them.
type Hub struct {
	mu        sync.RWMutex
	clients   map[uint]map[string]*client
	writeWait time.Duration
	log       zerolog.Logger
}

// NewHub returns an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:   make(map[uint]map[string]*client),
		writeWait: DefaultWriteWait,
		log:       logger.With().Str("component", "realtime").Logger(),
	}
}

// Register adds conn for userID and returns its connection id.
func (h *Hub) Register(userID uint, role domain.Role, conn Conn) string {
	c := &client{id: uuid.NewString(), userID: userID, role: role, conn: conn}
	h.mu.Lock()
	set, ok := h.clients[userID]
	if !ok {
		set = make(map[string]*client)
		h.clients[userID] = set
	}
	set[c.id] = c
	h.mu.Unlock()

	observability.WSConnections.Inc()
	h.log.Debug().Uint("user_id", userID).Str("conn_id", c.id).Msg("websocket registered")
	return c.id
}

// Unregister removes a connection. Unknown ids are ignored.
func (h *Hub) Unregister(userID uint, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(userID, connID)
}

func (h *Hub) removeLocked(userID uint, connID string) {
	set, ok := h.clients[userID]
	if !ok {
		return
	}
	if _, ok := set[connID]; !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(h.clients, userID)
	}
	observability.WSConnections.Dec()
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// SendToUser writes msg to every connection of userID and returns how many
// writes succeeded.
func (h *Hub) SendToUser(ctx context.Context, userID uint, msg any) int {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[userID]))
	for _, c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	return h.deliver(ctx, targets, msg)
}

// SendToConn writes msg to the single connection connID of userID. It
// reports whether the write succeeded.
func (h *Hub) SendToConn(ctx context.Context, userID uint, connID string, msg any) bool {
	h.mu.RLock()
	c, ok := h.clients[userID][connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return h.deliver(ctx, []*client{c}, msg) == 1
}

// Broadcast writes msg to every admin and staff connection and returns how
// many writes succeeded.
func (h *Hub) Broadcast(ctx context.Context, msg any) int {
	h.mu.RLock()
	var targets []*client
	for _, set := range h.clients {
		for _, c := range set {
			if c.role.IsStaff() {
				targets = append(targets, c)
			}
		}
	}
	h.mu.RUnlock()
	return h.deliver(ctx, targets, msg)
}

// Publish broadcasts an order event. It implements services.EventPublisher.
func (h *Hub) Publish(ctx context.Context, ev domain.Event) error {
	h.Broadcast(ctx, ev)
	return nil
}

func (h *Hub) deliver(ctx context.Context, targets []*client, msg any) int {
	if len(targets) == 0 {
		return 0
	}
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []*client
		sent   int
	)
	for _, c := range targets {
		wg.Add(1)
		go func(c *client) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := c.write(msg, h.writeWait); err != nil {
				h.log.Debug().Err(err).Str("conn_id", c.id).Msg("websocket write failed")
				mu.Lock()
				failed = append(failed, c)
				mu.Unlock()
				return
			}
			mu.Lock()
			sent++
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	if len(failed) > 0 {
		h.mu.Lock()
		for _, c := range failed {
			h.removeLocked(c.userID, c.id)
		}
		h.mu.Unlock()
		for _, c := range failed {
			_ = c.conn.Close()
		}
	}
	return sent
}
