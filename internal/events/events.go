package events

import (
	"context"
	"time"
)

const (
	ProductCreated = "product.created"
	ProductDeleted = "product.deleted"
	BuyNowStaged   = "buynow.staged"
)

// Event es un cambio del catálogo publicado hacia otros servicios.
type Event struct {
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload,omitempty"`
}

func New(eventType, key string, payload interface{}) Event {
	return Event{
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop descarta los eventos; se usa cuando no hay brokers configurados.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
