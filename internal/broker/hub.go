// Package broker implements the in-process fan-out channel: a room-keyed hub
// of WebSocket sessions plus a sharded dispatcher that preserves per-room
// delivery order. Rooms are bare string ids, a user id for direct delivery or
// a group id for group delivery. Delivery is at-most-once and best-effort; a
// session that is offline or not joined simply misses the event and recovers
// on its next conversation fetch.
package broker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatwire/chat-system/internal/api/metrics"
	"github.com/chatwire/chat-system/internal/core/ports"
)

// Hub tracks connected sessions and their room interests. Registry state is
// guarded by a mutex; delivery takes a read snapshot so slow consumers never
// stall the registry.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]map[string]struct{}
	closed  bool
	wg      sync.WaitGroup
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]map[string]struct{}),
		log:     log,
	}
}

// Register adds a connected session to the hub and starts its pumps.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		c.close()
		return
	}
	h.clients[c] = make(map[string]struct{})
	count := len(h.clients)
	h.mu.Unlock()

	metrics.BrokerConnections.Inc()
	h.log.Debug().Str("connection_id", c.ID).Str("user_id", c.UserID).Int("connections", count).Msg("session registered")

	if c.conn != nil {
		h.wg.Add(2)
		go func() {
			defer h.wg.Done()
			c.writePump()
		}()
		go func() {
			defer h.wg.Done()
			c.readPump()
		}()
	}
}

// Unregister removes a session and all of its room interests. Safe to call
// more than once; only the first call closes the send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	rooms, ok := h.clients[c]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for room := range rooms {
		h.detachLocked(c, room)
	}
	c.closed = true
	count := len(h.clients)
	h.mu.Unlock()

	close(c.send)
	metrics.BrokerConnections.Dec()
	h.log.Debug().Str("connection_id", c.ID).Int("connections", count).Msg("session unregistered")
}

// Join registers a session's interest in a room. Idempotent; joining an
// unknown or already-joined room is a no-op beyond registry bookkeeping.
func (h *Hub) Join(c *Client, room string) {
	if room == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	rooms, ok := h.clients[c]
	if !ok {
		return
	}
	rooms[room] = struct{}{}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

// Leave drops a session's interest in a room.
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rooms, ok := h.clients[c]; ok {
		delete(rooms, room)
	}
	h.detachLocked(c, room)
}

func (h *Hub) detachLocked(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Deliver fans an event out to every session joined to its room and returns
// the number of sessions reached. Sessions whose send buffer is full are
// dropped from the hub; they reconnect and recover via retrieval.
func (h *Hub) Deliver(event ports.Event) int {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("event", event.Type).Msg("failed to encode event")
		return 0
	}

	targets := h.roomSnapshot(event.Room)
	delivered := 0
	var stalled []*Client
	for _, c := range targets {
		if h.safeSend(c, payload) {
			delivered++
		} else {
			stalled = append(stalled, c)
		}
	}

	for _, c := range stalled {
		h.log.Warn().Str("connection_id", c.ID).Str("room", event.Room).Msg("send buffer full, dropping session")
		h.Unregister(c)
	}

	metrics.BrokerEventsDelivered.WithLabelValues(event.Type).Add(float64(delivered))
	return delivered
}

func (h *Hub) roomSnapshot(room string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[room]
	targets := make([]*Client, 0, len(members))
	for c := range members {
		targets = append(targets, c)
	}
	return targets
}

func (h *Hub) safeSend(c *Client, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[c]; !ok || c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Rooms reports the set of rooms a session is currently joined to.
func (h *Hub) Rooms(c *Client) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := make([]string, 0, len(h.clients[c]))
	for room := range h.clients[c] {
		rooms = append(rooms, room)
	}
	return rooms
}

// ConnectionCount returns the number of registered sessions.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every connection and waits for the pump goroutines to
// finish, up to timeout.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info().Int("connections", len(clients)).Msg("hub shut down")
		return nil
	case <-time.After(timeout):
		h.log.Warn().Msg("hub shutdown timed out")
		return context.DeadlineExceeded
	}
}
