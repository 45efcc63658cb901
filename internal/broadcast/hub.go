package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const defaultBufferSize = 64

// Subscription is one connected viewer. Messages carries JSON encoded events and is
// closed once the subscription is removed from the hub.
type Subscription struct {
	ID       string
	messages chan []byte
}

// Messages returns the channel of encoded events.
func (s *Subscription) Messages() <-chan []byte {
	return s.messages
}

// Hub keeps the set of connected viewers and copies every event to each of them.
type Hub struct {
	mu         sync.RWMutex
	subs       map[string]*Subscription
	bufferSize int
}

// NewHub creates a hub. Each subscriber buffers up to bufferSize events.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	return &Hub{
		subs:       make(map[string]*Subscription),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a new viewer.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		ID:       uuid.NewString(),
		messages: make(chan []byte, h.bufferSize),
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	h.mu.Unlock()

	slog.Debug("Subscriber registered", "subscription_id", sub.ID)

	return sub
}

// Unsubscribe removes the viewer and closes its channel. It is safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.ID]; !ok {
		return
	}
	delete(h.subs, sub.ID)
	close(sub.messages)

	slog.Debug("Subscriber removed", "subscription_id", sub.ID)
}

// Len returns the number of connected viewers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs)
}

// Publish encodes the event once and offers it to every subscriber.
// A subscriber with a full buffer misses the event.
func (h *Hub) Publish(_ context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to encode event", "type", event.Type, "error", err)

		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		select {
		case sub.messages <- data:
		default:
			slog.Warn("Subscriber buffer full, dropping event",
				"subscription_id", sub.ID,
				"type", event.Type,
			)
		}
	}
}

// Close removes every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.messages)
	}
}
