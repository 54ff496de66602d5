package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noval-eka/storefront/internal/events"
	"github.com/noval-eka/storefront/internal/repo"
)

type stubStore struct {
	lastTopic   string
	lastAggID   uuid.UUID
	lastPayload []byte
}

func (s *stubStore) Insert(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (repo.DomainEvent, error) {
	s.lastTopic = topic
	s.lastAggID = aggregateID
	s.lastPayload = payload
	return repo.DomainEvent{
		ID:          uuid.New(),
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  time.Now(),
	}, nil
}

type captureNotifier struct {
	events []repo.DomainEvent
}

func (c *captureNotifier) Notify(_ context.Context, event repo.DomainEvent) error {
	c.events = append(c.events, event)
	return nil
}

func TestEmitPersistsAndNotifies(t *testing.T) {
	store := &stubStore{}
	notifier := &captureNotifier{}
	bus := &events.Bus{Store: store, Notifiers: []events.Notifier{notifier}}

	cartID := uuid.New()
	ev, err := bus.Emit(context.Background(), events.TopicVoucherApplied, cartID, map[string]any{"code": "SUMMER"})
	require.NoError(t, err)
	require.Equal(t, events.TopicVoucherApplied, store.lastTopic)
	require.Equal(t, cartID, store.lastAggID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(store.lastPayload, &payload))
	require.Equal(t, "SUMMER", payload["code"])

	require.Len(t, notifier.events, 1)
	require.Equal(t, ev.ID, notifier.events[0].ID)
}

func TestEmitRejectsEmptyTopic(t *testing.T) {
	bus := &events.Bus{Store: &stubStore{}}
	_, err := bus.Emit(context.Background(), "  ", uuid.New(), nil)
	require.Error(t, err)
}

func TestEmitRejectsNilAggregate(t *testing.T) {
	bus := &events.Bus{Store: &stubStore{}}
	_, err := bus.Emit(context.Background(), events.TopicCartCreated, uuid.Nil, nil)
	require.Error(t, err)
}

func TestEmitRejectsInvalidJSONString(t *testing.T) {
	bus := &events.Bus{Store: &stubStore{}}
	_, err := bus.Emit(context.Background(), events.TopicCartCreated, uuid.New(), "{not json")
	require.Error(t, err)
}
