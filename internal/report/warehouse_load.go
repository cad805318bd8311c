package report

import (
	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// WarehouseLoadItem: загрузка склада.
type WarehouseLoadItem struct {
	WarehouseID string               `json:"warehouseId"`
	Name        string               `json:"name"`
	Type        domain.WarehouseType `json:"type"`
	Incoming    int                  `json:"incoming"`
	Outgoing    int                  `json:"outgoing"`
	AvgStayDays float64              `json:"avgStayDays"`
	LoadFactor  int                  `json:"loadFactor"`
	// Synthetic: хотя бы одна метрика не вычислена и заменена нулём.
	Synthetic bool `json:"synthetic"`
}

// BuildWarehouseLoad строит отчёт по всем складам справочника.
func BuildWarehouseLoad(s *Snapshot, f Filter) []WarehouseLoadItem {
	incoming := make(map[string]int)
	outgoing := make(map[string]int)
	stays := make(map[string]*mean)
	volume := make(map[string]float64)

	for _, leg := range s.RouteLegs {
		if !s.legMatches(leg, s.legParticipants(leg), f) {
			continue
		}
		incoming[leg.EndWarehouseID]++
		outgoing[leg.StartWarehouseID]++
	}

	for _, cargo := range s.Cargos {
		cargoParticipants := s.orderParticipants(cargo.OrderID)
		legs := s.legs(cargo.ID)

		// Время на складе: от прибытия участка до отправления следующего.
		for i, leg := range legs {
			if i+1 >= len(legs) || legs[i+1].StartWarehouseID != leg.EndWarehouseID {
				continue
			}
			if !s.legMatches(leg, cargoParticipants, f) {
				continue
			}
			arrived, okArr := s.firstEvent(leg.ID, domain.EventTypeArrived)
			departed, okDep := s.firstEvent(legs[i+1].ID, domain.EventTypeDeparted)
			if !okArr || !okDep || departed.Before(arrived) {
				continue
			}
			m := stays[leg.EndWarehouseID]
			if m == nil {
				m = &mean{}
				stays[leg.EndWarehouseID] = m
			}
			m.add(departed.Sub(arrived).Hours() / 24)
		}

		if cargo.CurrentStatus != domain.CargoStatusAtWarehouse || !f.matchContractor(cargoParticipants...) {
			continue
		}
		if at, ok := currentWarehouse(legs); ok {
			volume[at] += cargo.Volume
		}
	}

	items := make([]WarehouseLoadItem, 0, len(s.Warehouses))
	for _, w := range s.Warehouses {
		item := WarehouseLoadItem{
			WarehouseID: w.ID,
			Name:        w.Name,
			Type:        w.Type,
			Incoming:    incoming[w.ID],
			Outgoing:    outgoing[w.ID],
		}

		stayKnown := false
		if m := stays[w.ID]; m != nil {
			if avg, ok := m.value(); ok {
				item.AvgStayDays = round1(avg)
				stayKnown = true
			}
		}
		loadKnown := w.CapacityM3 > 0
		if loadKnown {
			item.LoadFactor = percent(volume[w.ID], w.CapacityM3)
		}
		item.Synthetic = !stayKnown || !loadKnown

		items = append(items, item)
	}
	return items
}

// legMatches применяет фильтр к участку: дата участка и участие контрагента
// через заказ груза или транспорт участка.
func (s *Snapshot) legMatches(leg domain.RouteLeg, cargoParticipants []int64, f Filter) bool {
	if !f.matchDate(s.legDate(leg)) {
		return false
	}
	participants := cargoParticipants
	if carrier, ok := s.carrierOf(leg); ok {
		participants = append(append([]int64{}, cargoParticipants...), carrier)
	}
	return f.matchContractor(participants...)
}

// currentWarehouse определяет склад, где находится груз: конец последнего
// завершённого участка, иначе начало первого.
func currentWarehouse(legs []domain.RouteLeg) (string, bool) {
	for i := len(legs) - 1; i >= 0; i-- {
		if legs[i].Status == domain.RouteLegStatusCompleted {
			return legs[i].EndWarehouseID, true
		}
	}
	if len(legs) > 0 {
		return legs[0].StartWarehouseID, true
	}
	return "", false
}
