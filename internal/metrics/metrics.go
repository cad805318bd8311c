package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics содержит прикладные метрики SCM. Nil-значение допустимо: все
// методы становятся no-op, что удобно в тестах и утилитах.
type Metrics struct {
	// Отчёты
	reportDuration *prometheus.HistogramVec
	reportErrors   *prometheus.CounterVec
	snapshotLoads  *prometheus.CounterVec

	// Операции над сущностями
	entityOps *prometheus.CounterVec

	// Трекинг
	trackingEvents  *prometheus.CounterVec
	inboundMessages *prometheus.CounterVec

	// Outbox
	outboxPublishes     *prometheus.CounterVec
	outboxPending       prometheus.Gauge
	outboxOldestPending prometheus.Gauge
}

// New создаёт метрики в глобальном registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer создаёт метрики в заданном registry.
func NewWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		reportDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scm_report_duration_seconds",
			Help:    "Duration of report generation in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"report"})),
		reportErrors: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scm_report_errors_total",
			Help: "Total number of failed report generations.",
		}, []string{"report"})),
		snapshotLoads: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scm_report_snapshot_loads_total",
			Help: "Snapshot loads for reports, split by whether the load was shared with a concurrent request.",
		}, []string{"shared"})),
		entityOps: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scm_entity_operations_total",
			Help: "Total number of entity operations grouped by entity, operation and result.",
		}, []string{"entity", "operation", "result"})),
		trackingEvents: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scm_tracking_events_total",
			Help: "Total number of appended tracking events by type.",
		}, []string{"event_type"})),
		inboundMessages: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scm_inbound_tracking_messages_total",
			Help: "Inbound tracking messages consumed from the broker by result.",
		}, []string{"result"})),
		outboxPublishes: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scm_outbox_publish_attempts_total",
			Help: "Total number of outbox publish attempts grouped by result.",
		}, []string{"result"})),
		outboxPending: register(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scm_outbox_pending_records",
			Help: "Current number of pending records in transactional outbox.",
		})),
		outboxOldestPending: register(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scm_outbox_oldest_pending_age_seconds",
			Help: "Age in seconds of the oldest pending outbox record.",
		})),
	}
}

// register регистрирует коллектор; при повторной регистрации возвращает уже существующий.
func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type %T", alreadyRegistered.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// RecordReport фиксирует длительность построения отчёта и ошибку, если была.
func (m *Metrics) RecordReport(report string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.reportDuration.WithLabelValues(report).Observe(duration.Seconds())
	if err != nil {
		m.reportErrors.WithLabelValues(report).Inc()
	}
}

// RecordSnapshotLoad считает загрузки снимка; shared: результат разделён с параллельным запросом.
func (m *Metrics) RecordSnapshotLoad(shared bool) {
	if m == nil {
		return
	}
	label := "false"
	if shared {
		label = "true"
	}
	m.snapshotLoads.WithLabelValues(label).Inc()
}

// RecordEntityOperation считает CRUD-операцию по сущности.
func (m *Metrics) RecordEntityOperation(entity, operation string, err error) {
	if m == nil {
		return
	}
	m.entityOps.WithLabelValues(entity, operation, resultLabel(err)).Inc()
}

// RecordTrackingEvent считает добавленное событие отслеживания.
func (m *Metrics) RecordTrackingEvent(eventType string) {
	if m == nil {
		return
	}
	m.trackingEvents.WithLabelValues(eventType).Inc()
}

// RecordInboundMessage считает входящее сообщение телеметрии: ok, duplicate, invalid, error, dlq.
func (m *Metrics) RecordInboundMessage(result string) {
	if m == nil {
		return
	}
	m.inboundMessages.WithLabelValues(result).Inc()
}

// RecordOutboxPublish считает попытку публикации: sent, retry_error, failed, dlq_failed.
func (m *Metrics) RecordOutboxPublish(result string) {
	if m == nil {
		return
	}
	m.outboxPublishes.WithLabelValues(result).Inc()
}

// SetOutboxBacklog выставляет размер backlog и возраст самой старой записи.
func (m *Metrics) SetOutboxBacklog(pending int, oldestAge time.Duration) {
	if m == nil {
		return
	}
	if oldestAge < 0 {
		oldestAge = 0
	}
	m.outboxPending.Set(float64(pending))
	m.outboxOldestPending.Set(oldestAge.Seconds())
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
