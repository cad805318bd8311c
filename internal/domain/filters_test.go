package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOrderFilterMatch(t *testing.T) {
	created := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	order := Order{
		OrderNumber: "ORD-2024-001",
		CreatedAt:   created,
		Status:      OrderStatusInTransit,
		SenderID:    4,
		RecipientID: 1,
	}
	names := map[int64]string{1: "ООО Ромашка", 4: "АО Металлург"}
	lookup := func(id int64) string { return names[id] }

	sender := int64(4)
	other := int64(2)
	from := created
	to := created.Add(-time.Hour)

	tests := []struct {
		name   string
		filter OrderFilter
		want   bool
	}{
		{name: "empty filter", filter: OrderFilter{}, want: true},
		{name: "status match", filter: OrderFilter{Status: OrderStatusInTransit}, want: true},
		{name: "status mismatch", filter: OrderFilter{Status: OrderStatusDelivered}, want: false},
		{name: "sender match", filter: OrderFilter{SenderID: &sender}, want: true},
		{name: "recipient mismatch", filter: OrderFilter{RecipientID: &other}, want: false},
		{name: "inclusive from", filter: OrderFilter{DateFrom: &from}, want: true},
		{name: "before to", filter: OrderFilter{DateTo: &to}, want: false},
		{name: "search by number", filter: OrderFilter{Search: "ord-2024"}, want: true},
		{name: "search by sender name", filter: OrderFilter{Search: "металлург"}, want: true},
		{name: "search miss", filter: OrderFilter{Search: "нет такого"}, want: false},
		{name: "conjunction", filter: OrderFilter{Status: OrderStatusInTransit, Search: "нет такого"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.filter.Match(order, lookup))
		})
	}
}

func TestRouteLegFilterMatch_Warehouse(t *testing.T) {
	transport := "А123АА77"
	leg := RouteLeg{CargoID: "c1", StartWarehouseID: "wh1", EndWarehouseID: "wh2", AssignedTransportID: &transport, Status: RouteLegStatusActive}

	require.True(t, RouteLegFilter{WarehouseID: "wh2"}.Match(leg))
	require.True(t, RouteLegFilter{WarehouseID: "wh1", AssignedTransportID: transport}.Match(leg))
	require.False(t, RouteLegFilter{WarehouseID: "wh3"}.Match(leg))
	require.False(t, RouteLegFilter{Status: RouteLegStatusCompleted}.Match(leg))
}

func TestTransportFilterMatch_Owner(t *testing.T) {
	owner := int64(2)
	other := int64(5)
	tr := Transport{RegNumber: "А123АА77", Type: TransportTypeTruck, ContractorID: &owner}

	require.True(t, TransportFilter{ContractorID: &owner, Search: "а123"}.Match(tr))
	require.False(t, TransportFilter{ContractorID: &other}.Match(tr))
	require.False(t, TransportFilter{ContractorID: &owner}.Match(Transport{RegNumber: "X"}))
}

func TestInRange(t *testing.T) {
	at := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	before := at.Add(-time.Minute)
	after := at.Add(time.Minute)

	require.True(t, InRange(at, nil, nil))
	require.True(t, InRange(at, &at, &at))
	require.True(t, InRange(at, &before, &after))
	require.False(t, InRange(at, &after, nil))
	require.False(t, InRange(at, nil, &before))
}
