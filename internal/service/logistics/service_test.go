package logistics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/scm/internal/domain"
	"github.com/vladislavdragonenkov/scm/internal/metrics"
	"github.com/vladislavdragonenkov/scm/internal/service/logistics"
	"github.com/vladislavdragonenkov/scm/internal/storage/memory"
)

var fixedNow = time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC)

type env struct {
	svc      *logistics.Service
	repos    domain.Repositories
	registry *prometheus.Registry
	supplier domain.Contractor
	client   domain.Contractor
	carrier  domain.Contractor
	order    domain.Order
	cargo    domain.Cargo
	leg      domain.RouteLeg
}

func newEnv(t *testing.T) env {
	t.Helper()
	ctx := context.Background()
	registry := prometheus.NewRegistry()
	repos := memory.NewStore().Repositories()
	svc := logistics.New(repos,
		logistics.WithMetrics(metrics.NewWithRegisterer(registry)),
		logistics.WithClock(func() time.Time { return fixedNow }),
	)

	supplier, err := svc.CreateContractor(ctx, domain.Contractor{Name: "АО Металлург", Role: domain.ContractorRoleSupplier})
	require.NoError(t, err)
	client, err := svc.CreateContractor(ctx, domain.Contractor{Name: "ООО Ромашка", Role: domain.ContractorRoleClient})
	require.NoError(t, err)
	carrier, err := svc.CreateContractor(ctx, domain.Contractor{Name: "ТК Магистраль", Role: domain.ContractorRoleCarrier})
	require.NoError(t, err)

	for _, w := range []domain.Warehouse{
		{ID: "wh1", Name: "Склад Москва", Address: "Москва", Type: domain.WarehouseTypeMain, CapacityM3: 1000},
		{ID: "wh2", Name: "Склад Казань", Address: "Казань", Type: domain.WarehouseTypeTransit},
	} {
		_, err = svc.CreateWarehouse(ctx, w)
		require.NoError(t, err)
	}
	_, err = svc.CreateTransport(ctx, domain.Transport{RegNumber: "А123АА77", Type: domain.TransportTypeTruck, Capacity: 20, ContractorID: &carrier.ID})
	require.NoError(t, err)

	order, err := svc.CreateOrder(ctx, domain.Order{
		OrderNumber: "ORD-2024-001",
		TotalCost:   decimal.NewFromInt(150000),
		SenderID:    supplier.ID,
		RecipientID: client.ID,
	})
	require.NoError(t, err)
	cargo, err := svc.CreateCargo(ctx, domain.Cargo{CargoID: "CRG-001", OrderID: order.ID, Weight: 500, Volume: 4})
	require.NoError(t, err)
	transport := "А123АА77"
	leg, err := svc.CreateRouteLeg(ctx, domain.RouteLeg{
		CargoID:             cargo.ID,
		StartWarehouseID:    "wh1",
		EndWarehouseID:      "wh2",
		SequenceOrder:       1,
		AssignedTransportID: &transport,
	})
	require.NoError(t, err)

	return env{
		svc:      svc,
		repos:    repos,
		registry: registry,
		supplier: supplier,
		client:   client,
		carrier:  carrier,
		order:    order,
		cargo:    cargo,
		leg:      leg,
	}
}

func (e env) pendingEvents(t *testing.T) []string {
	t.Helper()
	msgs, err := e.repos.Outbox.PullPending(context.Background(), 1000)
	require.NoError(t, err)
	types := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		types = append(types, msg.EventType)
	}
	return types
}

func counterTotal(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)

	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metric:
		for _, m := range family.GetMetric() {
			for _, pair := range m.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
					continue metric
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestService_CreateDefaults(t *testing.T) {
	e := newEnv(t)

	require.Equal(t, domain.OrderStatusPending, e.order.Status)
	require.Equal(t, domain.CargoStatusAtWarehouse, e.cargo.CurrentStatus)
	require.Equal(t, domain.RouteLegStatusPending, e.leg.Status)
	require.Equal(t, int64(1), e.supplier.ID)

	events := e.pendingEvents(t)
	require.Contains(t, events, "contractor.created")
	require.Contains(t, events, "order.created")
	require.Contains(t, events, "route_leg.created")
}

func TestService_ValidationBeforeRepository(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.CreateOrder(ctx, domain.Order{OrderNumber: "ORD-X", SenderID: e.client.ID, RecipientID: e.client.ID})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.svc.CreateCargo(ctx, domain.Cargo{CargoID: "CRG-0", OrderID: e.order.ID, Weight: 0, Volume: 1})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	require.True(t, verr.Has("weight"))

	_, err = e.svc.CreateCargo(ctx, domain.Cargo{CargoID: "CRG-LIGHT", OrderID: e.order.ID, Weight: 0.1, Volume: 1})
	require.NoError(t, err)

	require.Equal(t, 2.0, counterTotal(t, e.registry, "scm_entity_operations_total", map[string]string{"result": "error"}))
}

func TestService_ReferentialChecks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		call  func() error
		field string
	}{
		{
			name: "order with unknown sender",
			call: func() error {
				_, err := e.svc.CreateOrder(ctx, domain.Order{OrderNumber: "ORD-2", SenderID: 99, RecipientID: e.client.ID})
				return err
			},
			field: "senderId",
		},
		{
			name: "cargo with unknown order",
			call: func() error {
				_, err := e.svc.CreateCargo(ctx, domain.Cargo{CargoID: "CRG-2", OrderID: "missing", Weight: 1, Volume: 1})
				return err
			},
			field: "orderId",
		},
		{
			name: "route leg with unknown warehouse",
			call: func() error {
				_, err := e.svc.CreateRouteLeg(ctx, domain.RouteLeg{CargoID: e.cargo.ID, StartWarehouseID: "wh2", EndWarehouseID: "wh9", SequenceOrder: 2})
				return err
			},
			field: "endWarehouseId",
		},
		{
			name: "route leg with unknown transport",
			call: func() error {
				transport := "Х000ХХ00"
				_, err := e.svc.UpdateRouteLeg(ctx, e.leg.ID, domain.RouteLegPatch{AssignedTransportID: &transport})
				return err
			},
			field: "assignedTransportId",
		},
		{
			name: "event for unknown leg",
			call: func() error {
				_, err := e.svc.AppendEvent(ctx, domain.TrackingEvent{RouteLegID: "missing", EventType: domain.EventTypeCreated})
				return err
			},
			field: "routeLegId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.ErrorIs(t, err, domain.ErrReferential)
			var rerr *domain.ReferentialError
			require.True(t, errors.As(err, &rerr))
			require.Equal(t, tt.field, rerr.Field)
		})
	}
}

func TestService_TransportOwnerMustBeCarrier(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.CreateTransport(context.Background(), domain.Transport{
		RegNumber: "В456ВВ99", Type: domain.TransportTypeTruck, Capacity: 10, ContractorID: &e.client.ID,
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_UpdateOrderStatus(t *testing.T) {
	e := newEnv(t)
	status := domain.OrderStatusInTransit

	updated, err := e.svc.UpdateOrder(context.Background(), e.order.ID, domain.OrderPatch{Status: &status})
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusInTransit, updated.Status)
	require.Equal(t, e.order.OrderNumber, updated.OrderNumber)
	require.Contains(t, e.pendingEvents(t), "order.status_changed")

	same := e.client.ID
	_, err = e.svc.UpdateOrder(context.Background(), e.order.ID, domain.OrderPatch{SenderID: &same})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.svc.UpdateOrder(context.Background(), "missing", domain.OrderPatch{Status: &status})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_DeleteCargoTwice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.svc.DeleteCargo(ctx, e.cargo.ID))
	require.NoError(t, e.svc.DeleteCargo(ctx, e.cargo.ID))

	_, err := e.svc.GetRouteLeg(ctx, e.leg.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Второе удаление ничего не нашло и не публикует событие.
	deleted := 0
	for _, event := range e.pendingEvents(t) {
		if event == "cargo.deleted" {
			deleted++
		}
	}
	require.Equal(t, 1, deleted)

	require.NoError(t, e.svc.DeleteContractor(ctx, 999))
	require.NoError(t, e.svc.DeleteTransport(ctx, "Х000ХХ00"))
	require.NotContains(t, e.pendingEvents(t), "contractor.deleted")
	require.NotContains(t, e.pendingEvents(t), "transport.deleted")
}

func TestService_DeleteContractorKeepsOrders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.svc.DeleteContractor(ctx, e.supplier.ID))

	order, err := e.svc.GetOrder(ctx, e.order.ID)
	require.NoError(t, err)
	require.Equal(t, e.supplier.ID, order.SenderID)
}

func (e env) cargoStatus(t *testing.T) domain.CargoStatus {
	t.Helper()
	cargo, err := e.svc.GetCargo(context.Background(), e.cargo.ID)
	require.NoError(t, err)
	return cargo.CurrentStatus
}

func TestService_LateEventDoesNotRewindCargo(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.AppendEvent(ctx, domain.TrackingEvent{RouteLegID: e.leg.ID, EventType: domain.EventTypeArrived, Timestamp: fixedNow.Add(10 * time.Hour)})
	require.NoError(t, err)
	_, err = e.svc.AppendEvent(ctx, domain.TrackingEvent{RouteLegID: e.leg.ID, EventType: domain.EventTypeDeparted, Timestamp: fixedNow.Add(2 * time.Hour)})
	require.NoError(t, err)
	require.Equal(t, domain.CargoStatusAtWarehouse, e.cargoStatus(t))

	// Более позднее событие снова двигает груз.
	_, err = e.svc.AppendEvent(ctx, domain.TrackingEvent{RouteLegID: e.leg.ID, EventType: domain.EventTypeDeparted, Timestamp: fixedNow.Add(11 * time.Hour)})
	require.NoError(t, err)
	require.Equal(t, domain.CargoStatusInTransit, e.cargoStatus(t))
}

func TestService_CargoStatusFollowsLatestLeg(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	second, err := e.svc.CreateRouteLeg(ctx, domain.RouteLeg{
		CargoID:          e.cargo.ID,
		StartWarehouseID: "wh2",
		EndWarehouseID:   "wh1",
		SequenceOrder:    2,
	})
	require.NoError(t, err)

	_, err = e.svc.AppendEvent(ctx, domain.TrackingEvent{
		RouteLegID:  second.ID,
		EventType:   domain.EventTypeDelayed,
		DelayReason: domain.DelayReasonWeather,
		Timestamp:   fixedNow.Add(5 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, domain.CargoStatusDelayed, e.cargoStatus(t))

	// Запоздавшее прибытие на первом участке не отменяет задержку на втором.
	_, err = e.svc.AppendEvent(ctx, domain.TrackingEvent{RouteLegID: e.leg.ID, EventType: domain.EventTypeArrived, Timestamp: fixedNow.Add(time.Hour)})
	require.NoError(t, err)
	require.Equal(t, domain.CargoStatusDelayed, e.cargoStatus(t))

	// Событие с тем же временем, что и последнее, применяется.
	_, err = e.svc.AppendEvent(ctx, domain.TrackingEvent{RouteLegID: second.ID, EventType: domain.EventTypeDeparted, Timestamp: fixedNow.Add(5 * time.Hour)})
	require.NoError(t, err)
	require.Equal(t, domain.CargoStatusInTransit, e.cargoStatus(t))
}
