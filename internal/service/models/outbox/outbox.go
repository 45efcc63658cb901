package outbox

import (
	"time"
)

// OutboxMessage represents an event that failed to be published to RabbitMQ.
type OutboxMessage struct {
	ID           int64
	EventID      string
	EventType    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}

// Exhausted reports whether the message has used up its retries.
func (m *OutboxMessage) Exhausted() bool {
	return m.MaxRetries > 0 && m.RetryCount >= m.MaxRetries
}
