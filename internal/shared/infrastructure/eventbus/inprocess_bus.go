package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/maccam912/vikunja-ai/internal/shared/domain"
)

// Handler receives one decoded envelope.
type Handler func(ctx context.Context, envelope domain.Envelope) error

type subscription struct {
	pattern string
	handler Handler
}

// InProcessBus delivers published envelopes synchronously to subscribers
// whose topic pattern matches the routing key. It stands in for RabbitMQ in
// local mode.
type InProcessBus struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

// NewInProcessBus creates an empty bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{logger: logger}
}

// Subscribe registers handler for routing keys matching pattern. Patterns
// use AMQP topic syntax: "*" matches one word, "#" matches zero or more.
func (b *InProcessBus) Subscribe(pattern string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{pattern: pattern, handler: handler})
}

// Publish decodes payload and dispatches it. Handler failures are joined and
// returned after every matching handler has run.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var envelope domain.Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.RoutingKey == "" {
		envelope.RoutingKey = routingKey
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	var errs []error
	delivered := 0
	for _, sub := range subs {
		if !MatchTopic(sub.pattern, routingKey) {
			continue
		}
		delivered++
		if err := sub.handler(ctx, envelope); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sub.pattern, err))
		}
	}

	b.logger.DebugContext(ctx, "event dispatched",
		"routing_key", routingKey,
		"event_id", envelope.EventID,
		"subscribers", delivered,
	)
	return errors.Join(errs...)
}

// Close is a no-op.
func (b *InProcessBus) Close() error {
	return nil
}

// MatchTopic reports whether key matches an AMQP topic pattern.
func MatchTopic(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "#":
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if matchWords(pattern[1:], key[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(key) == 0 {
				return false
			}
		default:
			if len(key) == 0 || key[0] != pattern[0] {
				return false
			}
		}
		pattern, key = pattern[1:], key[1:]
	}
	return len(key) == 0
}
