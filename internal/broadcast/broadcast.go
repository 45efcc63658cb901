package broadcast

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventNewOrder           = "NEW_ORDER"
	EventOrderStatusUpdated = "ORDER_STATUS_UPDATED"
	EventOrderUpdated       = "ORDER_UPDATED"
	EventOrdersMerged       = "ORDERS_MERGED"
	EventMenuUpdated        = "MENU_UPDATED"
)

// Event is a notification about a change that connected screens may want to react to.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent creates an event with a fresh id.
func NewEvent(eventType string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events on a best-effort basis. Publish must not block the caller.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Multi fans an event out to several publishers in order.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) {
	for _, p := range m {
		p.Publish(ctx, event)
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
