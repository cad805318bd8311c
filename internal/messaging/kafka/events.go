package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// Topics для Kafka
const (
	TopicDomainEvents     = "scm.domain.events"
	TopicTrackingInbound  = "scm.tracking.inbound"
	TopicDeadLetterQueue  = "scm.dlq"
	DefaultConsumerGroup  = "scm-tracking-ingest"
	defaultProducerClient = "scm"
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// DomainEvent: конверт доменного события из outbox.
type DomainEvent struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// NewDomainEvent заворачивает outbox-сообщение в конверт.
func NewDomainEvent(msg domain.OutboxMessage) *DomainEvent {
	payload := json.RawMessage(msg.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return &DomainEvent{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       payload,
		PublishedAt:   time.Now().UTC(),
	}
}

// InboundTrackingEvent: событие отслеживания от внешней телематики.
type InboundTrackingEvent struct {
	EventID     string              `json:"event_id"`
	RouteLegID  string              `json:"route_leg_id"`
	EventType   string              `json:"event_type"`
	Timestamp   *time.Time          `json:"timestamp,omitempty"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
	Description string              `json:"description,omitempty"`
	DelayReason string              `json:"delay_reason,omitempty"`
}

// ToDomain преобразует входящее событие в доменное. Пустой timestamp
// заполнит сервис.
func (e InboundTrackingEvent) ToDomain() domain.TrackingEvent {
	event := domain.TrackingEvent{
		ID:          e.EventID,
		RouteLegID:  e.RouteLegID,
		EventType:   domain.EventType(e.EventType),
		Coordinates: e.Coordinates,
		Description: e.Description,
		DelayReason: domain.DelayReason(e.DelayReason),
	}
	if e.Timestamp != nil {
		event.Timestamp = e.Timestamp.UTC()
	}
	return event
}

// ParseInboundTrackingEvent парсит InboundTrackingEvent из сообщения
func ParseInboundTrackingEvent(message *sarama.ConsumerMessage) (*InboundTrackingEvent, error) {
	var event InboundTrackingEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tracking event: %w", err)
	}
	if event.RouteLegID == "" {
		event.RouteLegID = string(message.Key)
	}
	return &event, nil
}

// ParseDomainEvent парсит DomainEvent из сообщения
func ParseDomainEvent(message *sarama.ConsumerMessage) (*DomainEvent, error) {
	var event DomainEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal domain event: %w", err)
	}
	return &event, nil
}
