package application

import (
	"context"

	"github.com/maccam912/vikunja-ai/internal/shared/domain"
)

// EventPublisher delivers domain events after the change they describe has
// been applied.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.DomainEvent) error
}

// NoopEventPublisher discards events.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, ...domain.DomainEvent) error { return nil }
