package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/scm/internal/domain"
	"github.com/vladislavdragonenkov/scm/internal/service/logistics"
)

// seedDemo заполняет пустое хранилище демонстрационным набором: пять
// контрагентов, четыре склада, две отгрузки в пути и одна доставленная.
// Если контрагенты уже есть, ничего не делает.
func seedDemo(ctx context.Context, svc *logistics.Service, logger *log.Entry) error {
	existing, err := svc.ListContractors(ctx, domain.ContractorFilter{})
	if err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if len(existing) > 0 {
		logger.WithField("contractors", len(existing)).Info("хранилище не пустое, демо-данные не загружаем")
		return nil
	}

	contractors := []domain.Contractor{
		{Name: "ООО \"ТехноТрейд\"", Role: domain.ContractorRoleClient, Contact: "+7 (495) 123-45-67", INN: "7701234567", LegalAddress: "г. Москва, ул. Тверская, д. 1"},
		{Name: "ООО \"ЛогистикПро\"", Role: domain.ContractorRoleCarrier, Contact: "+7 (495) 234-56-78", INN: "7702345678", LegalAddress: "г. Москва, Ленинградский пр-т, д. 15"},
		{Name: "АО \"МегаСтрой\"", Role: domain.ContractorRoleClient, Contact: "+7 (812) 345-67-89", INN: "7803456789", LegalAddress: "г. Санкт-Петербург, Невский пр-т, д. 28"},
		{Name: "ООО \"ПромСнаб\"", Role: domain.ContractorRoleSupplier, Contact: "+7 (831) 456-78-90", INN: "5204567890", LegalAddress: "г. Нижний Новгород, ул. Большая Покровская, д. 5"},
		{Name: "ООО \"ТрансГрупп\"", Role: domain.ContractorRoleCarrier, Contact: "+7 (843) 567-89-01", INN: "1605678901", LegalAddress: "г. Казань, ул. Баумана, д. 12"},
	}
	ids := make([]int64, len(contractors))
	for i, c := range contractors {
		created, err := svc.CreateContractor(ctx, c)
		if err != nil {
			return fmt.Errorf("seed contractor %q: %w", c.Name, err)
		}
		ids[i] = created.ID
	}
	client1, carrier1, client2, supplier, carrier2 := ids[0], ids[1], ids[2], ids[3], ids[4]

	warehouses := []domain.Warehouse{
		{ID: "wh1", Name: "Склад А", Address: "г. Москва, ул. Складская, д. 10", Type: domain.WarehouseTypeMain, ContactPersonID: &carrier1, CapacityM3: 5000},
		{ID: "wh2", Name: "Транзитный пункт", Address: "г. Нижний Новгород, ул. Транзитная, д. 3", Type: domain.WarehouseTypeTransit, ContactPersonID: &supplier, CapacityM3: 1500},
		{ID: "wh3", Name: "Склад Б", Address: "г. Казань, ул. Промышленная, д. 7", Type: domain.WarehouseTypeDistribution, ContactPersonID: &carrier2, CapacityM3: 3000},
		{ID: "wh4", Name: "Склад В", Address: "г. Санкт-Петербург, ул. Портовая, д. 21", Type: domain.WarehouseTypeMain, ContactPersonID: &client2, CapacityM3: 4000},
	}
	for _, w := range warehouses {
		if _, err := svc.CreateWarehouse(ctx, w); err != nil {
			return fmt.Errorf("seed warehouse %s: %w", w.ID, err)
		}
	}

	transport := []domain.Transport{
		{RegNumber: "А123АА77", Type: domain.TransportTypeTruck, Capacity: 5000, Coordinates: &domain.Coordinates{Lat: 55.7558, Lng: 37.6173}, ContractorID: &carrier1},
		{RegNumber: "В456ВВ78", Type: domain.TransportTypeTruck, Capacity: 10000, Coordinates: &domain.Coordinates{Lat: 56.2965, Lng: 43.9361}, ContractorID: &carrier1},
		{RegNumber: "С789СС16", Type: domain.TransportTypeTruck, Capacity: 3000, Coordinates: &domain.Coordinates{Lat: 55.7887, Lng: 49.1221}, ContractorID: &carrier2},
		{RegNumber: "TRAIN-001", Type: domain.TransportTypeTrain, Capacity: 50000, ContractorID: &carrier2},
	}
	for _, tr := range transport {
		if _, err := svc.CreateTransport(ctx, tr); err != nil {
			return fmt.Errorf("seed transport %s: %w", tr.RegNumber, err)
		}
	}

	orders := []domain.Order{
		{ID: "o1", OrderNumber: "ORD-2024-001", CreatedAt: at("2024-01-15T08:00:00Z"), ShipmentDate: atPtr("2024-01-15T14:00:00Z"), DeliveryDate: atPtr("2024-01-17T18:00:00Z"), TotalCost: decimal.NewFromInt(150000), Status: domain.OrderStatusInTransit, SenderID: supplier, RecipientID: client1},
		{ID: "o2", OrderNumber: "ORD-2024-002", CreatedAt: at("2024-01-10T10:00:00Z"), ShipmentDate: atPtr("2024-01-10T12:00:00Z"), DeliveryDate: atPtr("2024-01-14T12:00:00Z"), TotalCost: decimal.NewFromInt(250000), Status: domain.OrderStatusDelivered, SenderID: supplier, RecipientID: client2},
		{ID: "o3", OrderNumber: "ORD-2024-003", CreatedAt: at("2024-01-16T14:00:00Z"), TotalCost: decimal.NewFromInt(75000), Status: domain.OrderStatusPending, SenderID: supplier, RecipientID: client1},
		{ID: "o4", OrderNumber: "ORD-2024-004", CreatedAt: at("2024-01-14T09:00:00Z"), ShipmentDate: atPtr("2024-01-14T10:00:00Z"), DeliveryDate: atPtr("2024-01-16T20:00:00Z"), TotalCost: decimal.NewFromInt(320000), Status: domain.OrderStatusInTransit, SenderID: supplier, RecipientID: client2},
		{ID: "o5", OrderNumber: "ORD-2024-005", CreatedAt: at("2024-01-12T11:00:00Z"), TotalCost: decimal.NewFromInt(45000), Status: domain.OrderStatusCancelled, SenderID: supplier, RecipientID: client1},
	}
	for _, o := range orders {
		if _, err := svc.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("seed order %s: %w", o.OrderNumber, err)
		}
	}

	cargos := []domain.Cargo{
		{ID: "c1", CargoID: "TRK-001-2024", OrderID: "o1", Weight: 250, Volume: 2.5, Description: "Электроника: ноутбуки", CurrentStatus: domain.CargoStatusAtWarehouse},
		{ID: "c2", CargoID: "TRK-002-2024", OrderID: "o1", Weight: 500, Volume: 4.0, Description: "Комплектующие для серверов", CurrentStatus: domain.CargoStatusAtWarehouse},
		{ID: "c3", CargoID: "TRK-003-2024", OrderID: "o2", Weight: 150, Volume: 6.0, Description: "Офисная мебель", CurrentStatus: domain.CargoStatusDelivered},
		{ID: "c4", CargoID: "TRK-004-2024", OrderID: "o4", Weight: 1200, Volume: 9.5, Description: "Строительные материалы", CurrentStatus: domain.CargoStatusAtWarehouse},
	}
	for _, c := range cargos {
		if _, err := svc.CreateCargo(ctx, c); err != nil {
			return fmt.Errorf("seed cargo %s: %w", c.CargoID, err)
		}
	}

	legs := []domain.RouteLeg{
		{ID: "rl1", CargoID: "c1", StartWarehouseID: "wh1", EndWarehouseID: "wh2", SequenceOrder: 1, PlannedStart: atPtr("2024-01-15T14:00:00Z"), AssignedTransportID: strPtr("А123АА77"), Status: domain.RouteLegStatusCompleted},
		{ID: "rl2", CargoID: "c1", StartWarehouseID: "wh2", EndWarehouseID: "wh3", SequenceOrder: 2, PlannedStart: atPtr("2024-01-16T10:00:00Z"), AssignedTransportID: strPtr("В456ВВ78"), Status: domain.RouteLegStatusActive},
		{ID: "rl3", CargoID: "c1", StartWarehouseID: "wh3", EndWarehouseID: "wh4", SequenceOrder: 3, Status: domain.RouteLegStatusPending},
		{ID: "rl4", CargoID: "c4", StartWarehouseID: "wh1", EndWarehouseID: "wh4", SequenceOrder: 1, PlannedStart: atPtr("2024-01-14T10:00:00Z"), AssignedTransportID: strPtr("С789СС16"), Status: domain.RouteLegStatusActive},
	}
	for _, l := range legs {
		if _, err := svc.CreateRouteLeg(ctx, l); err != nil {
			return fmt.Errorf("seed route leg %s: %w", l.ID, err)
		}
	}

	events := []domain.TrackingEvent{
		{ID: "e1", RouteLegID: "rl1", EventType: domain.EventTypeCreated, Timestamp: at("2024-01-15T08:00:00Z"), Coordinates: &domain.Coordinates{Lat: 55.7558, Lng: 37.6173}, Description: "Груз принят на склад"},
		{ID: "e2", RouteLegID: "rl1", EventType: domain.EventTypeDeparted, Timestamp: at("2024-01-15T14:30:00Z"), Coordinates: &domain.Coordinates{Lat: 55.7558, Lng: 37.6173}, Description: "Отправлен со склада А"},
		{ID: "e3", RouteLegID: "rl1", EventType: domain.EventTypeArrived, Timestamp: at("2024-01-16T06:00:00Z"), Coordinates: &domain.Coordinates{Lat: 56.2965, Lng: 43.9361}, Description: "Прибыл в транзитный пункт"},
		{ID: "e4", RouteLegID: "rl2", EventType: domain.EventTypeDeparted, Timestamp: at("2024-01-16T10:00:00Z"), Coordinates: &domain.Coordinates{Lat: 56.2965, Lng: 43.9361}, Description: "Отправлен из транзитного пункта"},
		{ID: "e5", RouteLegID: "rl2", EventType: domain.EventTypeArrived, Timestamp: at("2024-01-16T18:00:00Z"), Coordinates: &domain.Coordinates{Lat: 55.7887, Lng: 49.1221}, Description: "Прибыл на склад Б"},
		{ID: "e6", RouteLegID: "rl4", EventType: domain.EventTypeDeparted, Timestamp: at("2024-01-14T10:30:00Z"), Coordinates: &domain.Coordinates{Lat: 55.7558, Lng: 37.6173}, Description: "Отправлен со склада А"},
		{ID: "e7", RouteLegID: "rl4", EventType: domain.EventTypeDelayed, Timestamp: at("2024-01-15T16:00:00Z"), Coordinates: &domain.Coordinates{Lat: 57.8136, Lng: 34.6893}, Description: "Снегопад на трассе М-11", DelayReason: domain.DelayReasonWeather},
	}
	for _, e := range events {
		if _, err := svc.AppendEvent(ctx, e); err != nil {
			return fmt.Errorf("seed tracking event %s: %w", e.ID, err)
		}
	}

	logger.WithFields(log.Fields{
		"contractors": len(contractors),
		"orders":      len(orders),
		"cargos":      len(cargos),
		"events":      len(events),
	}).Info("демо-данные загружены")
	return nil
}

func at(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func atPtr(value string) *time.Time {
	t := at(value)
	return &t
}

func strPtr(value string) *string {
	return &value
}
