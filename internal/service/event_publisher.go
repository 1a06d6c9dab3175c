package service

import (
	"context"

	"edu-chatbot-be/pkg/events"
)

// EventPublisher is the bus port services publish through. Satisfied by
// pkg/nats.Publisher; nil means the bus is unavailable and publishes are
// skipped.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}
