package kafka

import (
	"context"
	"errors"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/scm/internal/domain"
	"github.com/vladislavdragonenkov/scm/internal/metrics"
)

// EventAppender дописывает событие отслеживания в журнал участка.
type EventAppender interface {
	AppendEvent(ctx context.Context, e domain.TrackingEvent) (domain.TrackingEvent, error)
}

// NewTrackingHandler возвращает обработчик scm.tracking.inbound.
//
// Некорректные сообщения и ссылки на несуществующие участки помечаются
// Permanent и уходят в DLQ без повторов. Повтор события с уже известным
// event_id считается доставленным.
func NewTrackingHandler(appender EventAppender, m *metrics.Metrics, logger *log.Entry) MessageHandler {
	if logger == nil {
		logger = log.WithField("component", "tracking-ingest")
	}
	return func(ctx context.Context, message *sarama.ConsumerMessage) error {
		inbound, err := ParseInboundTrackingEvent(message)
		if err != nil {
			m.RecordInboundMessage("invalid")
			return Permanent(err)
		}

		created, err := appender.AppendEvent(ctx, inbound.ToDomain())
		switch {
		case err == nil:
			m.RecordInboundMessage("ok")
			logger.WithFields(log.Fields{
				"event_id":     created.ID,
				"route_leg_id": created.RouteLegID,
				"event_type":   created.EventType,
			}).Debug("tracking event ingested")
			return nil
		case errors.Is(err, domain.ErrConflict):
			m.RecordInboundMessage("duplicate")
			logger.WithField("event_id", inbound.EventID).Debug("duplicate tracking event skipped")
			return nil
		case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrReferential):
			m.RecordInboundMessage("invalid")
			return Permanent(err)
		default:
			m.RecordInboundMessage("error")
			return err
		}
	}
}
