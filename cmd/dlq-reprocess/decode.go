package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/scm/internal/messaging/kafka"
)

var errUnknownLetter = errors.New("unsupported dlq payload")

// replay: сообщение, восстановленное из записи DLQ.
type replay struct {
	kind  string
	topic string
	key   string
	value []byte
}

// trackingLetter пишет tracking consumer при отказе обработки.
type trackingLetter struct {
	OriginalTopic string `json:"original_topic"`
	OriginalKey   string `json:"original_key"`
	OriginalValue string `json:"original_value"`
	ErrorMessage  string `json:"error_message"`
}

// outboxLetter приходит внутри DomainEvent от outbox worker.
type outboxLetter struct {
	OutboxID      string          `json:"outbox_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishError  string          `json:"publish_error"`
}

// decodeLetter определяет источник записи DLQ по её форме.
func decodeLetter(msg *sarama.ConsumerMessage, opts options) (replay, error) {
	var tl trackingLetter
	if json.Unmarshal(msg.Value, &tl) == nil && tl.OriginalValue != "" {
		return trackingReplay(tl, opts)
	}

	envelope, err := kafka.ParseDomainEvent(msg)
	if err != nil || envelope.ID == "" || len(envelope.Payload) == 0 {
		return replay{}, errUnknownLetter
	}
	return outboxReplay(envelope, opts)
}

func trackingReplay(letter trackingLetter, opts options) (replay, error) {
	r := replay{
		kind:  kindTracking,
		topic: cmpOr(strings.TrimSpace(letter.OriginalTopic), opts.trackingTopic),
		key:   letter.OriginalKey,
		value: []byte(letter.OriginalValue),
	}
	if !opts.validate {
		return r, nil
	}

	inbound, err := kafka.ParseInboundTrackingEvent(&sarama.ConsumerMessage{Key: []byte(r.key), Value: r.value})
	if err != nil {
		return replay{}, err
	}
	// Отметку времени по умолчанию сервис ставит сам.
	event := inbound.ToDomain()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := event.Validate(); err != nil {
		return replay{}, fmt.Errorf("tracking event would be rejected again: %w", err)
	}
	return r, nil
}

func outboxReplay(envelope *kafka.DomainEvent, opts options) (replay, error) {
	var letter outboxLetter
	if err := json.Unmarshal(envelope.Payload, &letter); err != nil {
		return replay{}, fmt.Errorf("decode outbox letter: %w", err)
	}
	if len(letter.Payload) == 0 || string(letter.Payload) == "null" {
		return replay{}, errors.New("outbox letter has no original payload")
	}

	event := kafka.DomainEvent{
		ID:            cmpOr(letter.OutboxID, envelope.ID),
		AggregateType: cmpOr(letter.AggregateType, envelope.AggregateType),
		AggregateID:   cmpOr(letter.AggregateID, envelope.AggregateID),
		EventType:     cmpOr(letter.EventType, envelope.EventType),
		Payload:       letter.Payload,
		PublishedAt:   time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return replay{}, fmt.Errorf("encode domain event: %w", err)
	}
	return replay{
		kind:  kindOutbox,
		topic: opts.eventsTopic,
		key:   cmpOr(event.AggregateID, event.ID),
		value: body,
	}, nil
}

// cmpOr возвращает первое значение, не состоящее из одних пробелов.
func cmpOr(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
