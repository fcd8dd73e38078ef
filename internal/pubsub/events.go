// Package pubsub provides a generic publish/subscribe event system used to
// fan notifications, resource mutations and log lines out to the TUI.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"

	// NotifyEvent carries a user-visible notification.
	NotifyEvent EventType = "notify"
	// CredentialsChangedEvent fires when the bearer token was reloaded.
	CredentialsChangedEvent EventType = "credentials_changed"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
