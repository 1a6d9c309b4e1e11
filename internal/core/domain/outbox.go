package domain

import "time"

const (
	EventSaleCompleted         = "sale.completed"
	EventSubscriptionPurchased = "subscription.purchased"
)

// OutboxEvent is a domain event waiting to be published.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}
