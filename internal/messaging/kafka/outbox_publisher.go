package kafka

import (
	"cmp"
	"context"
	"errors"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// Заголовки доменных событий: потребители фильтруют по ним без разбора тела.
const (
	HeaderEventType     = "x-event-type"
	HeaderAggregateType = "x-aggregate-type"
)

var errPublisherNotReady = errors.New("kafka outbox publisher is not initialized")

// EventPublisher доставляет outbox-сообщения в один topic. Один и тот же
// тип служит и основным каналом, и DLQ outbox worker.
type EventPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher возвращает publisher для topic; пустой topic означает
// scm.domain.events.
func NewOutboxPublisher(producer *Producer, topic string) *EventPublisher {
	return &EventPublisher{producer: producer, topic: cmp.Or(topic, TopicDomainEvents)}
}

// Publish пишет конверт DomainEvent. Ключ партиционирования: агрегат,
// без него ID сообщения.
func (p *EventPublisher) Publish(ctx context.Context, msg domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return errPublisherNotReady
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	headers := []sarama.RecordHeader{
		{Key: []byte(HeaderEventType), Value: []byte(msg.EventType)},
		{Key: []byte(HeaderAggregateType), Value: []byte(msg.AggregateType)},
	}
	return p.producer.PublishEvent(p.topic, cmp.Or(msg.AggregateID, msg.ID), NewDomainEvent(msg), headers...)
}

var _ domain.OutboxPublisher = (*EventPublisher)(nil)
