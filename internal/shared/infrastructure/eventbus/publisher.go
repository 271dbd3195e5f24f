package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maccam912/vikunja-ai/internal/shared/domain"
	"github.com/maccam912/vikunja-ai/pkg/observability"
)

// Publisher defines the interface for publishing events to a message broker.
type Publisher interface {
	// Publish sends a message to the event bus.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// EventPublisher serializes domain events into envelopes and hands them to a
// Publisher. It implements application.EventPublisher.
type EventPublisher struct {
	publisher Publisher
	metrics   observability.Metrics
	logger    *slog.Logger
}

// NewEventPublisher wraps publisher. A nil metrics sink records nothing.
func NewEventPublisher(publisher Publisher, metrics observability.Metrics, logger *slog.Logger) *EventPublisher {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventPublisher{publisher: publisher, metrics: metrics, logger: logger}
}

// Publish sends every event and returns the joined failures. A failed event
// does not stop the ones after it.
func (p *EventPublisher) Publish(ctx context.Context, events ...domain.DomainEvent) error {
	var errs []error
	for _, event := range events {
		payload, err := domain.MarshalEnvelope(event)
		if err != nil {
			errs = append(errs, fmt.Errorf("marshal %s: %w", event.RoutingKey(), err))
			continue
		}
		if err := p.publisher.Publish(ctx, event.RoutingKey(), payload); err != nil {
			p.logger.WarnContext(ctx, "event publish failed",
				"routing_key", event.RoutingKey(),
				"event_id", event.EventID(),
				"error", err,
			)
			errs = append(errs, fmt.Errorf("publish %s: %w", event.RoutingKey(), err))
			continue
		}
		p.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", event.RoutingKey()))
	}
	return errors.Join(errs...)
}
