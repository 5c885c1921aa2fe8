package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shenikar/disaster_response_system/internal/auth"
	"github.com/sirupsen/logrus"
)

const defaultBuffer = 64

// Client is one connected observer. Its outbound queue is bounded; when it
// is full the oldest queued event is discarded to make room for the newest.
type Client struct {
	ID       uuid.UUID
	Identity auth.Identity

	mu      sync.Mutex
	send    chan Event
	closed  bool
	dropped atomic.Int64
}

// Events is drained by the connection's single writer goroutine.
func (c *Client) Events() <-chan Event {
	return c.send
}

// Dropped returns how many events were discarded for this observer.
func (c *Client) Dropped() int64 {
	return c.dropped.Load()
}

func (c *Client) enqueue(evt Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	for {
		select {
		case c.send <- evt:
			return true
		default:
		}
		select {
		case <-c.send:
			c.dropped.Add(1)
		default:
		}
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub tracks connected observers and fans events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
	buffer  int
	logger  *logrus.Logger
}

func NewHub(buffer int, logger *logrus.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
		buffer:  buffer,
		logger:  logger,
	}
}

// Register adds an observer. Anonymous identities are refused.
func (h *Hub) Register(id auth.Identity) (*Client, error) {
	if err := auth.Authorize(id, auth.ActionSubscribe); err != nil {
		return nil, err
	}
	c := &Client{
		ID:       uuid.New(),
		Identity: id,
		send:     make(chan Event, h.buffer),
	}
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	h.logger.WithFields(logrus.Fields{
		"component": "hub",
		"client_id": c.ID,
		"user_id":   id.UserID,
	}).Info("Observer connected")
	return c, nil
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c.ID]
	delete(h.clients, c.ID)
	h.mu.Unlock()
	if !ok {
		return
	}
	c.close()
	h.logger.WithFields(logrus.Fields{
		"component": "hub",
		"client_id": c.ID,
		"user_id":   c.Identity.UserID,
		"dropped":   c.Dropped(),
	}).Info("Observer disconnected")
}

// Broadcast enqueues evt for every observer. The write lock serializes
// concurrent publishers so all observers see the same order. That order is
// publish order; updates of one row carry its version for clients to compare.
func (h *Hub) Broadcast(evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		c.enqueue(evt)
	}
}

// Send delivers an event to a single observer only.
func (h *Hub) Send(c *Client, kind EventKind, payload any) error {
	evt, err := NewEvent(kind, payload)
	if err != nil {
		return err
	}
	c.enqueue(evt)
	return nil
}

// RelayLocation forwards a location update to every observer except the
// sender, tagged with the sender's user id.
func (h *Hub) RelayLocation(sender *Client, data json.RawMessage) error {
	fields := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fields); err != nil {
			return fmt.Errorf("location update must be a JSON object: %w", err)
		}
	}
	fields["user_id"] = sender.Identity.UserID.String()

	evt, err := NewEvent(EventUserLocationUpdate, fields)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		if id == sender.ID {
			continue
		}
		c.enqueue(evt)
	}
	return nil
}

// Online returns the distinct users with at least one live connection.
func (h *Hub) Online() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[uuid.UUID]struct{}, len(h.clients))
	users := make([]uuid.UUID, 0, len(h.clients))
	for _, c := range h.clients {
		if _, ok := seen[c.Identity.UserID]; ok {
			continue
		}
		seen[c.Identity.UserID] = struct{}{}
		users = append(users, c.Identity.UserID)
	}
	return users
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
