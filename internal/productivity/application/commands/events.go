package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	sharedApplication "github.com/maccam912/vikunja-ai/internal/shared/application"
	"github.com/maccam912/vikunja-ai/internal/shared/domain"
)

// EventEmitter stamps events with command metadata and publishes them.
// The remote change has already happened when it runs, so a failed publish
// is logged and never fails the command.
type EventEmitter struct {
	publisher sharedApplication.EventPublisher
	userID    uuid.UUID
	logger    *slog.Logger
}

// NewEventEmitter creates an emitter. A nil publisher discards events.
func NewEventEmitter(publisher sharedApplication.EventPublisher, userID uuid.UUID, logger *slog.Logger) *EventEmitter {
	if publisher == nil {
		publisher = sharedApplication.NoopEventPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventEmitter{publisher: publisher, userID: userID, logger: logger}
}

// Emit publishes events.
func (e *EventEmitter) Emit(ctx context.Context, events ...domain.DomainEvent) {
	if e == nil || len(events) == 0 {
		return
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, e.userID))
	if err := e.publisher.Publish(ctx, events...); err != nil {
		e.logger.WarnContext(ctx, "domain events not published", "count", len(events), "error", err)
	}
}
