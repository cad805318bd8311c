package domain

import (
	"sort"
	"time"
)

// RouteLegStatus: состояние участка маршрута.
type RouteLegStatus string

const (
	RouteLegStatusCompleted RouteLegStatus = "completed"
	RouteLegStatusActive    RouteLegStatus = "active"
	RouteLegStatusPending   RouteLegStatus = "pending"
)

// RouteLeg: участок маршрута груза между двумя складами.
// Участки одного груза упорядочены по SequenceOrder; конец i-го участка
// ожидается началом (i+1)-го, но это не проверяется.
type RouteLeg struct {
	ID               string     `json:"id"`
	CargoID          string     `json:"cargoId" validate:"required"`
	StartWarehouseID string     `json:"startWarehouseId" validate:"required"`
	EndWarehouseID   string     `json:"endWarehouseId" validate:"required"`
	SequenceOrder    int        `json:"sequenceOrder" validate:"gte=1"`
	PlannedStart     *time.Time `json:"plannedStart,omitempty"`
	// AssignedTransportID: слабая ссылка на Transport.RegNumber.
	AssignedTransportID *string        `json:"assignedTransportId,omitempty" validate:"omitempty,min=1"`
	Status              RouteLegStatus `json:"status" validate:"oneof=completed active pending"`
}

// Validate проверяет поля участка.
func (l *RouteLeg) Validate() error {
	return validateStruct(l).OrNil()
}

// TransportID возвращает госномер назначенного транспорта или пустую строку.
func (l *RouteLeg) TransportID() string {
	if l.AssignedTransportID == nil {
		return ""
	}
	return *l.AssignedTransportID
}

// RouteLegPatch: частичное обновление участка.
type RouteLegPatch struct {
	CargoID             *string         `json:"cargoId,omitempty"`
	StartWarehouseID    *string         `json:"startWarehouseId,omitempty"`
	EndWarehouseID      *string         `json:"endWarehouseId,omitempty"`
	SequenceOrder       *int            `json:"sequenceOrder,omitempty"`
	PlannedStart        *time.Time      `json:"plannedStart,omitempty"`
	AssignedTransportID *string         `json:"assignedTransportId,omitempty"`
	Status              *RouteLegStatus `json:"status,omitempty"`
}

// Apply переносит заданные поля в участок.
func (p RouteLegPatch) Apply(l *RouteLeg) {
	if p.CargoID != nil {
		l.CargoID = *p.CargoID
	}
	if p.StartWarehouseID != nil {
		l.StartWarehouseID = *p.StartWarehouseID
	}
	if p.EndWarehouseID != nil {
		l.EndWarehouseID = *p.EndWarehouseID
	}
	if p.SequenceOrder != nil {
		l.SequenceOrder = *p.SequenceOrder
	}
	if p.PlannedStart != nil {
		t := *p.PlannedStart
		l.PlannedStart = &t
	}
	if p.AssignedTransportID != nil {
		id := *p.AssignedTransportID
		l.AssignedTransportID = &id
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
}

// SortRouteLegs упорядочивает участки по SequenceOrder, затем по ID.
func SortRouteLegs(legs []RouteLeg) {
	sort.SliceStable(legs, func(i, j int) bool {
		if legs[i].SequenceOrder != legs[j].SequenceOrder {
			return legs[i].SequenceOrder < legs[j].SequenceOrder
		}
		return legs[i].ID < legs[j].ID
	})
}
