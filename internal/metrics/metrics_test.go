package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, vec.WithLabelValues(labels...).Write(metric))
	return metric.GetCounter().GetValue()
}

func TestMetrics_RecordReport(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.RecordReport("kpi", 15*time.Millisecond, nil)
	m.RecordReport("kpi", 20*time.Millisecond, errors.New("boom"))

	require.Equal(t, 1.0, counterValue(t, m.reportErrors, "kpi"))

	histogram := &dto.Metric{}
	observer, err := m.reportDuration.GetMetricWithLabelValues("kpi")
	require.NoError(t, err)
	require.NoError(t, observer.(prometheus.Metric).Write(histogram))
	require.Equal(t, uint64(2), histogram.GetHistogram().GetSampleCount())
}

func TestMetrics_EntityAndTracking(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.RecordEntityOperation("cargo", "create", nil)
	m.RecordEntityOperation("cargo", "create", errors.New("validation"))
	m.RecordTrackingEvent("delayed")
	m.RecordInboundMessage("dlq")
	m.RecordSnapshotLoad(true)

	require.Equal(t, 1.0, counterValue(t, m.entityOps, "cargo", "create", "ok"))
	require.Equal(t, 1.0, counterValue(t, m.entityOps, "cargo", "create", "error"))
	require.Equal(t, 1.0, counterValue(t, m.trackingEvents, "delayed"))
	require.Equal(t, 1.0, counterValue(t, m.inboundMessages, "dlq"))
	require.Equal(t, 1.0, counterValue(t, m.snapshotLoads, "true"))
}

func TestMetrics_ReRegistrationReturnsExisting(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := NewWithRegisterer(registry)
	second := NewWithRegisterer(registry)

	first.RecordTrackingEvent("arrived")
	require.Equal(t, 1.0, counterValue(t, second.trackingEvents, "arrived"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RecordReport("kpi", time.Second, nil)
		m.RecordEntityOperation("order", "delete", nil)
		m.RecordTrackingEvent("created")
		m.RecordInboundMessage("ok")
		m.RecordSnapshotLoad(false)
	})
}

func TestMetrics_OutboxBacklog(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.RecordOutboxPublish("sent")
	m.SetOutboxBacklog(4, -time.Second)

	require.Equal(t, 1.0, counterValue(t, m.outboxPublishes, "sent"))

	gauge := &dto.Metric{}
	require.NoError(t, m.outboxPending.Write(gauge))
	require.Equal(t, 4.0, gauge.GetGauge().GetValue())

	require.NoError(t, m.outboxOldestPending.Write(gauge))
	require.Zero(t, gauge.GetGauge().GetValue())
}
