package report

import (
	"time"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// CargoTrackingItem: груз с маршрутом и историей событий.
type CargoTrackingItem struct {
	ID            string             `json:"id"`
	CargoID       string             `json:"cargoId"`
	Description   string             `json:"description"`
	CurrentStatus domain.CargoStatus `json:"currentStatus"`
	OrderID       string             `json:"orderId"`
	RouteLegs     []CargoTrackingLeg `json:"routeLegs"`
}

// CargoTrackingLeg: участок маршрута в отчёте отслеживания.
type CargoTrackingLeg struct {
	ID                  string                 `json:"id"`
	SequenceOrder       int                    `json:"sequenceOrder"`
	StartWarehouseID    string                 `json:"startWarehouseId"`
	StartWarehouseName  string                 `json:"startWarehouseName"`
	EndWarehouseID      string                 `json:"endWarehouseId"`
	EndWarehouseName    string                 `json:"endWarehouseName"`
	AssignedTransportID *string                `json:"assignedTransportId,omitempty"`
	PlannedStart        *time.Time             `json:"plannedStart,omitempty"`
	Status              domain.RouteLegStatus  `json:"status"`
	Events              []domain.TrackingEvent `json:"events"`
}

// BuildCargoTracking строит отчёт отслеживания. Дата строки: дата
// создания заказа, которому принадлежит груз.
func BuildCargoTracking(s *Snapshot, f Filter) []CargoTrackingItem {
	items := make([]CargoTrackingItem, 0, len(s.Cargos))
	for _, cargo := range s.Cargos {
		var created *time.Time
		if o, ok := s.orderByID[cargo.OrderID]; ok {
			created = &o.CreatedAt
		}
		if !f.matchDate(created) || !f.matchContractor(s.cargoParticipants(cargo)...) {
			continue
		}

		legs := s.legs(cargo.ID)
		item := CargoTrackingItem{
			ID:            cargo.ID,
			CargoID:       cargo.CargoID,
			Description:   cargo.Description,
			CurrentStatus: cargo.CurrentStatus,
			OrderID:       cargo.OrderID,
			RouteLegs:     make([]CargoTrackingLeg, 0, len(legs)),
		}
		for _, leg := range legs {
			events := append([]domain.TrackingEvent{}, s.events(leg.ID)...)
			item.RouteLegs = append(item.RouteLegs, CargoTrackingLeg{
				ID:                  leg.ID,
				SequenceOrder:       leg.SequenceOrder,
				StartWarehouseID:    leg.StartWarehouseID,
				StartWarehouseName:  s.warehouseName(leg.StartWarehouseID),
				EndWarehouseID:      leg.EndWarehouseID,
				EndWarehouseName:    s.warehouseName(leg.EndWarehouseID),
				AssignedTransportID: leg.AssignedTransportID,
				PlannedStart:        leg.PlannedStart,
				Status:              leg.Status,
				Events:              events,
			})
		}
		items = append(items, item)
	}
	return items
}
