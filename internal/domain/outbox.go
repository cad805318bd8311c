package domain

import (
	"context"
	"time"
)

// Типы агрегатов в outbox-сообщениях.
const (
	AggregateContractor    = "contractor"
	AggregateWarehouse     = "warehouse"
	AggregateTransport     = "transport"
	AggregateOrder         = "order"
	AggregateCargo         = "cargo"
	AggregateRouteLeg      = "route_leg"
	AggregateTrackingEvent = "tracking_event"
)

// OutboxMessage: доменное событие, ожидающее доставки в брокер.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// OutboxStats: размер backlog и время самой старой ожидающей записи.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxPublisher доставляет событие наружу. Повторная доставка того же
// сообщения допустима: получатели дедуплицируют по ID.
type OutboxPublisher interface {
	Publish(ctx context.Context, msg OutboxMessage) error
}

// OutboxRepository хранит события между записью сущности и публикацией.
//
// PullPending отдаёт записи в порядке создания. MarkSent и MarkFailed
// снимают запись из очереди; для неизвестного id возвращается ErrOutboxPublish.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) error
}
