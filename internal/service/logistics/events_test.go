package logistics_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

func TestAppendEvent_AdvancesCargoStatus(t *testing.T) {
	tests := []struct {
		event domain.EventType
		want  domain.CargoStatus
	}{
		{event: domain.EventTypeDeparted, want: domain.CargoStatusInTransit},
		{event: domain.EventTypeDelayed, want: domain.CargoStatusDelayed},
		{event: domain.EventTypeArrived, want: domain.CargoStatusAtWarehouse},
		{event: domain.EventTypeDelivered, want: domain.CargoStatusDelivered},
		{event: domain.EventTypeCustoms, want: domain.CargoStatusAtWarehouse},
	}

	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			e := newEnv(t)
			ctx := context.Background()

			event := domain.TrackingEvent{RouteLegID: e.leg.ID, EventType: tt.event}
			if tt.event == domain.EventTypeDelayed {
				event.DelayReason = domain.DelayReasonTechnical
			}
			_, err := e.svc.AppendEvent(ctx, event)
			require.NoError(t, err)

			cargo, err := e.svc.GetCargo(ctx, e.cargo.ID)
			require.NoError(t, err)
			require.Equal(t, tt.want, cargo.CurrentStatus)
		})
	}
}

func TestAppendEvent_DelayedRequiresReason(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.AppendEvent(ctx, domain.TrackingEvent{
		RouteLegID: e.leg.ID,
		EventType:  domain.EventTypeDelayed,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.NotContains(t, e.pendingEvents(t), "tracking_event.appended")

	created, err := e.svc.AppendEvent(ctx, domain.TrackingEvent{
		RouteLegID:  e.leg.ID,
		EventType:   domain.EventTypeDelayed,
		DelayReason: domain.DelayReasonWeather,
	})
	require.NoError(t, err)
	require.Equal(t, domain.DelayReasonWeather, created.DelayReason)
	require.True(t, created.Timestamp.Equal(fixedNow))

	require.Equal(t, 1.0, counterTotal(t, e.registry, "scm_tracking_events_total", map[string]string{"event_type": "delayed"}))
	events := e.pendingEvents(t)
	require.Contains(t, events, "tracking_event.appended")
	require.Contains(t, events, "cargo.status_changed")
}

func TestAppendEvent_ReasonOnlyForDelays(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.AppendEvent(context.Background(), domain.TrackingEvent{
		RouteLegID:  e.leg.ID,
		EventType:   domain.EventTypeArrived,
		DelayReason: domain.DelayReasonWeather,
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestListEvents_Chronological(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	late := fixedNow.Add(2 * time.Hour)
	early := fixedNow.Add(-2 * time.Hour)
	_, err := e.svc.AppendEvent(ctx, domain.TrackingEvent{RouteLegID: e.leg.ID, EventType: domain.EventTypeArrived, Timestamp: late})
	require.NoError(t, err)
	_, err = e.svc.AppendEvent(ctx, domain.TrackingEvent{RouteLegID: e.leg.ID, EventType: domain.EventTypeDeparted, Timestamp: early})
	require.NoError(t, err)

	events, err := e.svc.ListEvents(ctx, domain.TrackingEventFilter{RouteLegID: e.leg.ID})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, domain.EventTypeDeparted, events[0].EventType)
	require.Equal(t, domain.EventTypeArrived, events[1].EventType)
}
