package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/scm/internal/domain"
	"github.com/vladislavdragonenkov/scm/internal/metrics"
)

type appenderFunc func(context.Context, domain.TrackingEvent) (domain.TrackingEvent, error)

func (f appenderFunc) AppendEvent(ctx context.Context, e domain.TrackingEvent) (domain.TrackingEvent, error) {
	return f(ctx, e)
}

func inboundCount(t *testing.T, registry *prometheus.Registry, result string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "scm_inbound_tracking_messages_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "result" && label.GetValue() == result {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestTrackingHandler(t *testing.T) {
	message := &sarama.ConsumerMessage{
		Topic: TopicTrackingInbound,
		Key:   []byte("leg-1"),
		Value: []byte(`{"event_id":"ext-1","event_type":"departed","timestamp":"2024-01-15T14:00:00Z"}`),
	}

	tests := []struct {
		name      string
		message   *sarama.ConsumerMessage
		appendErr error
		wantErr   bool
		permanent bool
		result    string
	}{
		{name: "appended", message: message, result: "ok"},
		{name: "duplicate", message: message, appendErr: fmt.Errorf("%w: exists", domain.ErrConflict), result: "duplicate"},
		{
			name:      "unknown leg",
			message:   message,
			appendErr: domain.NewReferentialError(domain.AggregateTrackingEvent, "routeLegId", "leg-1"),
			wantErr:   true,
			permanent: true,
			result:    "invalid",
		},
		{
			name:      "malformed payload",
			message:   &sarama.ConsumerMessage{Topic: TopicTrackingInbound, Value: []byte("{")},
			wantErr:   true,
			permanent: true,
			result:    "invalid",
		},
		{name: "storage failure", message: message, appendErr: errors.New("connection reset"), wantErr: true, result: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := prometheus.NewRegistry()
			var got domain.TrackingEvent
			handler := NewTrackingHandler(appenderFunc(func(_ context.Context, e domain.TrackingEvent) (domain.TrackingEvent, error) {
				got = e
				return e, tt.appendErr
			}), metrics.NewWithRegisterer(registry), nil)

			err := handler(context.Background(), tt.message)
			if tt.wantErr {
				require.Error(t, err)
				require.Equal(t, tt.permanent, IsPermanent(err))
			} else {
				require.NoError(t, err)
				require.Equal(t, "leg-1", got.RouteLegID)
				require.Equal(t, domain.EventTypeDeparted, got.EventType)
			}
			require.Equal(t, 1.0, inboundCount(t, registry, tt.result))
		})
	}
}
