package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/outbox"
	"github.com/streadway/amqp"
)

const contentTypeJSON = "application/json"

type amqpPublisher interface {
	Publish(exchange, routingKey string, msg amqp.Publishing) error
}

type outboxWriter interface {
	Insert(ctx context.Context, msg outbox.OutboxMessage) error
}

// Relay forwards events to a RabbitMQ exchange from a single goroutine, keeping
// the order in which they were published. Events that cannot be delivered are
// stored in the outbox for the retry worker. Once Run has returned, events go
// straight to the outbox.
type Relay struct {
	mu         sync.RWMutex
	stopped    bool
	client     amqpPublisher
	outbox     outboxWriter
	exchange   string
	maxRetries int
	queue      chan Event
	done       chan struct{}
}

// NewRelay creates a relay that buffers up to queueSize events.
func NewRelay(client amqpPublisher, outbox outboxWriter, exchange string, queueSize, maxRetries int) *Relay {
	if queueSize <= 0 {
		queueSize = 256
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}

	return &Relay{
		client:     client,
		outbox:     outbox,
		exchange:   exchange,
		maxRetries: maxRetries,
		queue:      make(chan Event, queueSize),
		done:       make(chan struct{}),
	}
}

// RoutingKey maps an event type to its routing key, e.g. NEW_ORDER -> order.new_order.
func RoutingKey(eventType string) string {
	return "order." + strings.ToLower(eventType)
}

// Publish enqueues the event without blocking.
func (r *Relay) Publish(_ context.Context, event Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		r.storeAfterStop(event)

		return
	}

	select {
	case r.queue <- event:
	default:
		slog.Warn("Relay queue full, dropping event", "event_id", event.ID, "type", event.Type)
	}
}

// Run drains the queue until ctx is cancelled, then flushes what is left.
func (r *Relay) Run(ctx context.Context) {
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			r.stopped = true
			r.mu.Unlock()

			r.flush()

			return
		case event := <-r.queue:
			r.forward(ctx, event)
		}
	}
}

// Done is closed after Run returns.
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

func (r *Relay) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		select {
		case event := <-r.queue:
			r.forward(ctx, event)
		default:
			return
		}
	}
}

func (r *Relay) storeAfterStop(event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to encode event", "event_id", event.ID, "error", err)

		return
	}

	slog.Warn("Relay stopped, storing event in outbox", "event_id", event.ID, "type", event.Type)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r.store(ctx, event, body, "relay stopped")
}

func (r *Relay) forward(ctx context.Context, event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to encode event", "event_id", event.ID, "error", err)

		return
	}

	err = r.client.Publish(r.exchange, RoutingKey(event.Type), amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         event.Type,
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	if err == nil {
		return
	}

	slog.Warn("Failed to publish event, storing in outbox",
		"event_id", event.ID,
		"type", event.Type,
		"error", err,
	)

	r.store(ctx, event, body, err.Error())
}

func (r *Relay) store(ctx context.Context, event Event, body []byte, lastError string) {
	now := time.Now()
	msg := outbox.OutboxMessage{
		EventID:      event.ID,
		EventType:    event.Type,
		ExchangeName: r.exchange,
		RoutingKey:   RoutingKey(event.Type),
		Payload:      body,
		ContentType:  contentTypeJSON,
		MaxRetries:   r.maxRetries,
		LastError:    lastError,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	}
	if err := r.outbox.Insert(ctx, msg); err != nil {
		slog.Error("Failed to save event to outbox", "event_id", event.ID, "error", err)
	}
}
