package report_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/scm/internal/domain"
	"github.com/vladislavdragonenkov/scm/internal/report"
)

func at(value string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return ts
}

func atPtr(value string) *time.Time {
	ts := at(value)
	return &ts
}

func strPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }

// fixtureData: два заказа, два груза, три участка.
//
//	c1 (o1): wh1 → wh2 (completed, А123АА77), wh2 → wh3 (active, А123АА77)
//	c2 (o2): wh1 → wh2 (completed, без транспорта)
//
// События в Data перечислены в обратном порядке.
func fixtureData() report.Data {
	return report.Data{
		Contractors: []domain.Contractor{
			{ID: 1, Name: "ООО Поставщик", Role: domain.ContractorRoleSupplier},
			{ID: 2, Name: "ООО Клиент", Role: domain.ContractorRoleClient},
			{ID: 3, Name: "ТК Быстрая доставка", Role: domain.ContractorRoleCarrier},
			{ID: 4, Name: "ТК Резерв", Role: domain.ContractorRoleCarrier},
		},
		Warehouses: []domain.Warehouse{
			{ID: "wh1", Name: "Склад Москва", Type: domain.WarehouseTypeMain, CapacityM3: 100},
			{ID: "wh2", Name: "Склад Казань", Type: domain.WarehouseTypeTransit, CapacityM3: 50},
		},
		Transport: []domain.Transport{
			{RegNumber: "А123АА77", Type: domain.TransportTypeTruck, Capacity: 20, ContractorID: int64Ptr(3)},
		},
		Orders: []domain.Order{
			{
				ID:           "o2",
				OrderNumber:  "ORD-2024-002",
				CreatedAt:    at("2024-01-10T09:00:00Z"),
				TotalCost:    decimal.NewFromInt(90000),
				Status:       domain.OrderStatusDelivered,
				SenderID:     2,
				RecipientID:  1,
				ShipmentDate: atPtr("2024-01-10T12:00:00Z"),
				DeliveryDate: atPtr("2024-01-14T12:00:00Z"),
			},
			{
				ID:           "o1",
				OrderNumber:  "ORD-2024-001",
				CreatedAt:    at("2024-01-15T08:00:00Z"),
				TotalCost:    decimal.NewFromInt(150000),
				Status:       domain.OrderStatusInTransit,
				SenderID:     1,
				RecipientID:  2,
				ShipmentDate: atPtr("2024-01-15T14:00:00Z"),
			},
		},
		Cargos: []domain.Cargo{
			{ID: "c1", CargoID: "CRG-001", OrderID: "o1", Weight: 500, Volume: 10, Description: "Трубы", CurrentStatus: domain.CargoStatusAtWarehouse},
			{ID: "c2", CargoID: "CRG-002", OrderID: "o2", Weight: 100, Volume: 2, Description: "Фитинги", CurrentStatus: domain.CargoStatusDelivered},
		},
		RouteLegs: []domain.RouteLeg{
			{
				ID:                  "l2",
				CargoID:             "c1",
				StartWarehouseID:    "wh2",
				EndWarehouseID:      "wh3",
				SequenceOrder:       2,
				PlannedStart:        atPtr("2024-01-16T08:00:00Z"),
				AssignedTransportID: strPtr("А123АА77"),
				Status:              domain.RouteLegStatusActive,
			},
			{
				ID:                  "l1",
				CargoID:             "c1",
				StartWarehouseID:    "wh1",
				EndWarehouseID:      "wh2",
				SequenceOrder:       1,
				PlannedStart:        atPtr("2024-01-15T12:00:00Z"),
				AssignedTransportID: strPtr("А123АА77"),
				Status:              domain.RouteLegStatusCompleted,
			},
			{
				ID:               "l3",
				CargoID:          "c2",
				StartWarehouseID: "wh1",
				EndWarehouseID:   "wh2",
				SequenceOrder:    1,
				Status:           domain.RouteLegStatusCompleted,
			},
		},
		Events: []domain.TrackingEvent{
			{ID: "e5", RouteLegID: "l2", EventType: domain.EventTypeDeparted, Timestamp: at("2024-01-17T02:00:00Z")},
			{ID: "e4", RouteLegID: "l2", EventType: domain.EventTypeDelayed, Timestamp: at("2024-01-16T10:00:00Z"), DelayReason: domain.DelayReasonCustoms},
			{ID: "e3", RouteLegID: "l1", EventType: domain.EventTypeArrived, Timestamp: at("2024-01-16T02:00:00Z")},
			{ID: "e2", RouteLegID: "l1", EventType: domain.EventTypeDeparted, Timestamp: at("2024-01-15T14:00:00Z")},
			{ID: "e1", RouteLegID: "l1", EventType: domain.EventTypeCreated, Timestamp: at("2024-01-15T08:00:00Z")},
		},
	}
}
