// Package logistics содержит прикладные операции над справочниками и
// отгрузками: валидация, проверка ссылок, запись, событие в outbox.
package logistics

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/scm/internal/domain"
	"github.com/vladislavdragonenkov/scm/internal/metrics"
)

// Типы событий outbox.
const (
	EventCreated       = "created"
	EventUpdated       = "updated"
	EventDeleted       = "deleted"
	EventStatusChanged = "status_changed"
	EventAppended      = "appended"
)

// Service: прикладной слой над репозиториями.
type Service struct {
	repos   domain.Repositories
	logger  *log.Entry
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics задаёт метрики.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New создаёт сервис поверх набора репозиториев.
func New(repos domain.Repositories, opts ...Option) *Service {
	s := &Service{
		repos:  repos,
		logger: log.WithField("component", "logistics"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// observe фиксирует результат операции в метриках и логе.
func (s *Service) observe(entity, operation, id string, err error) {
	s.metrics.RecordEntityOperation(entity, operation, err)

	entry := s.logger.WithFields(log.Fields{
		"entity":    entity,
		"operation": operation,
	})
	if id != "" {
		entry = entry.WithField("id", id)
	}
	if err != nil {
		entry.WithError(err).Debug("operation rejected")
		return
	}
	entry.Info("operation completed")
}

// emit кладёт событие в outbox. Ошибка записи логируется и не
// откатывает уже выполненную операцию.
func (s *Service) emit(ctx context.Context, aggregate, id, event string, payload any) {
	if s.repos.Outbox == nil {
		return
	}
	eventType := aggregate + "." + event
	fields := log.Fields{
		"aggregate": aggregate,
		"id":        id,
		"event":     eventType,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Error("marshal outbox payload failed")
		return
	}
	msg := domain.OutboxMessage{
		AggregateType: aggregate,
		AggregateID:   id,
		EventType:     eventType,
		Payload:       data,
	}
	// Сущность уже записана: отмена запроса не должна терять событие.
	if _, err := s.repos.Outbox.Enqueue(context.WithoutCancel(ctx), msg); err != nil {
		s.logger.WithError(err).WithFields(fields).Error("enqueue outbox message failed")
	}
}

// removeExisting удаляет сущность, если она есть. false означает, что
// удалять было нечего и событие удаления публиковать не нужно.
func removeExisting[K, T any](ctx context.Context, id K, get func(context.Context, K) (T, error), del func(context.Context, K) error) (bool, error) {
	if _, err := get(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if err := del(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}
