package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

func TestProducerConfig(t *testing.T) {
	cfg := producerConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	require.True(t, cfg.Producer.Idempotent)
	require.True(t, cfg.Producer.Return.Successes)
	require.Equal(t, 1, cfg.Net.MaxOpenRequests)
}

func TestProducer_PublishEvent(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWithClient(mp, log.WithField("component", "kafka-producer-test"))

	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var event DomainEvent
		require.NoError(t, json.Unmarshal(value, &event))
		require.Equal(t, "cargo-1", event.AggregateID)
		require.JSONEq(t, `{"cargoId":"CRG-001"}`, string(event.Payload))
		return nil
	})

	event := NewDomainEvent(domain.OutboxMessage{
		ID:            "m-1",
		AggregateType: domain.AggregateCargo,
		AggregateID:   "cargo-1",
		EventType:     "cargo.created",
		Payload:       []byte(`{"cargoId":"CRG-001"}`),
	})
	require.NoError(t, producer.PublishEvent(TopicDomainEvents, "cargo-1", event))
	require.NoError(t, producer.Close())
}

func TestProducer_PublishRawKeepsBody(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWithClient(mp, nil)
	body := []byte(`{"route_leg_id":"leg-1","event_type":"departed"}`)

	mp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		require.Equal(t, TopicTrackingInbound, msg.Topic)
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		require.Equal(t, "leg-1", string(key))
		value, err := msg.Value.Encode()
		require.NoError(t, err)
		require.Equal(t, body, value)
		require.Len(t, msg.Headers, 1)
		require.Equal(t, "x-replayed-from", string(msg.Headers[0].Key))
		require.False(t, msg.Timestamp.IsZero())
		return nil
	})

	require.NoError(t, producer.PublishRaw(TopicTrackingInbound, "leg-1", body,
		sarama.RecordHeader{Key: []byte("x-replayed-from"), Value: []byte(TopicDeadLetterQueue)}))
	require.NoError(t, producer.Close())
}

func TestProducer_PublishEvent_Errors(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWithClient(mp, nil)

	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	err := producer.PublishEvent(TopicDomainEvents, "cargo-1", NewDomainEvent(domain.OutboxMessage{ID: "m-1"}))
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.ErrorContains(t, err, "send to "+TopicDomainEvents)

	err = producer.PublishEvent(TopicDomainEvents, "k", make(chan int))
	require.ErrorContains(t, err, "marshal "+TopicDomainEvents+" event")

	require.NoError(t, mp.Close())
}

func TestNewDomainEvent(t *testing.T) {
	event := NewDomainEvent(domain.OutboxMessage{
		ID:            "m-2",
		AggregateType: domain.AggregateOrder,
		AggregateID:   "order-1",
		EventType:     "order.status_changed",
	})

	require.Equal(t, domain.AggregateOrder, event.AggregateType)
	require.Equal(t, "order.status_changed", event.EventType)
	require.Equal(t, "null", string(event.Payload), "empty payload encodes as null")
	require.WithinDuration(t, time.Now(), event.PublishedAt, time.Second)
}

func TestInboundTrackingEvent_ToDomain(t *testing.T) {
	ts := time.Date(2024, 1, 16, 13, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	inbound := InboundTrackingEvent{
		EventID:     "ext-1",
		RouteLegID:  "leg-1",
		EventType:   "delayed",
		Timestamp:   &ts,
		DelayReason: "weather",
		Coordinates: &domain.Coordinates{Lat: 55.75, Lng: 37.61},
	}

	event := inbound.ToDomain()
	require.Equal(t, "ext-1", event.ID)
	require.Equal(t, "leg-1", event.RouteLegID)
	require.Equal(t, domain.EventTypeDelayed, event.EventType)
	require.Equal(t, domain.DelayReasonWeather, event.DelayReason)
	require.Equal(t, time.UTC, event.Timestamp.Location())
	require.True(t, event.Timestamp.Equal(ts))

	require.True(t, InboundTrackingEvent{RouteLegID: "leg-1"}.ToDomain().Timestamp.IsZero(), "missing timestamp stays zero")
}
