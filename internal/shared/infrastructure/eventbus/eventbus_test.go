package eventbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maccam912/vikunja-ai/internal/shared/domain"
	"github.com/maccam912/vikunja-ai/internal/shared/infrastructure/eventbus"
	"github.com/maccam912/vikunja-ai/pkg/observability"
)

type testEvent struct {
	domain.BaseEvent
	TaskID int64 `json:"task_id"`
}

func newTestEvent(key string, id int64) *testEvent {
	return &testEvent{BaseEvent: domain.NewBaseEvent("1", "Task", key), TaskID: id}
}

type recordingPublisher struct {
	mu       sync.Mutex
	keys     []string
	payloads [][]byte
	failOn   string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload []byte) error {
	if key == p.failOn {
		return errors.New("broker down")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"task.created", "task.created", true},
		{"task.created", "task.updated", false},
		{"task.*", "task.created", true},
		{"task.*", "task", false},
		{"task.*", "task.relation.added", false},
		{"#", "priorities.recalculated", true},
		{"task.#", "task", true},
		{"task.#", "task.a.b", true},
		{"#.recalculated", "priorities.recalculated", true},
		{"*.recalculated", "task.created", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, eventbus.MatchTopic(tt.pattern, tt.key))
		})
	}
}

func TestEventPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	rec := &recordingPublisher{}
	metrics := observability.NewInMemoryMetrics()
	pub := eventbus.NewEventPublisher(rec, metrics, nil)

	event := newTestEvent("task.created", 42)
	require.NoError(t, pub.Publish(ctx, event))

	require.Len(t, rec.payloads, 1)
	assert.Equal(t, "task.created", rec.keys[0])

	var envelope domain.Envelope
	require.NoError(t, json.Unmarshal(rec.payloads[0], &envelope))
	assert.Equal(t, event.EventID(), envelope.EventID)
	assert.Equal(t, "Task", envelope.AggregateType)
	assert.JSONEq(t, `{"task_id":42}`, string(envelope.Payload))

	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricEventsPublished, observability.T("routing_key", "task.created")))
}

func TestEventPublisher_ContinuesAfterFailure(t *testing.T) {
	rec := &recordingPublisher{failOn: "task.deleted"}
	pub := eventbus.NewEventPublisher(rec, nil, nil)

	err := pub.Publish(context.Background(),
		newTestEvent("task.deleted", 1),
		newTestEvent("task.completed", 2),
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "task.deleted")
	assert.Equal(t, []string{"task.completed"}, rec.keys)
}

func TestInProcessBus_Dispatch(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.NewInProcessBus(nil)
	pub := eventbus.NewEventPublisher(bus, nil, nil)

	var taskEvents, all []string
	bus.Subscribe("task.*", func(_ context.Context, e domain.Envelope) error {
		taskEvents = append(taskEvents, e.RoutingKey)
		return nil
	})
	bus.Subscribe("#", func(_ context.Context, e domain.Envelope) error {
		all = append(all, e.RoutingKey)
		return nil
	})

	require.NoError(t, pub.Publish(ctx,
		newTestEvent("task.created", 1),
		newTestEvent("priorities.recalculated", 0),
	))

	assert.Equal(t, []string{"task.created"}, taskEvents)
	assert.Equal(t, []string{"task.created", "priorities.recalculated"}, all)
}

func TestInProcessBus_HandlerErrors(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)
	calls := 0
	bus.Subscribe("#", func(context.Context, domain.Envelope) error {
		calls++
		return assert.AnError
	})
	bus.Subscribe("task.created", func(context.Context, domain.Envelope) error {
		calls++
		return nil
	})

	payload, err := domain.MarshalEnvelope(newTestEvent("task.created", 1))
	require.NoError(t, err)

	err = bus.Publish(context.Background(), "task.created", payload)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, calls)
}

func TestInProcessBus_BadPayload(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)
	assert.Error(t, bus.Publish(context.Background(), "task.created", []byte("not json")))
}

func TestNoopPublisher(t *testing.T) {
	pub := eventbus.NewNoopPublisher(nil)
	assert.NoError(t, pub.Publish(context.Background(), "task.created", []byte("{}")))
	assert.NoError(t, pub.Close())
}
