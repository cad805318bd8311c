package report

import (
	"sort"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// CarrierEfficiencyItem: показатели перевозчика.
type CarrierEfficiencyItem struct {
	ContractorID  int64                 `json:"contractorId"`
	Name          string                `json:"name"`
	Role          domain.ContractorRole `json:"role"`
	CompletedLegs int                   `json:"completedLegs"`
	TotalLegs     int                   `json:"totalLegs"`
	AvgTimeHours  float64               `json:"avgTimeHours"`
	DelayPercent  int                   `json:"delayPercent"`
	// Synthetic: по участкам перевозчика нет событий, метрики: значения по умолчанию.
	Synthetic bool `json:"synthetic"`
}

type carrierAcc struct {
	total, completed int
	withEvents       int
	delayed          int
	transit          mean
}

// BuildCarrierEfficiency строит отчёт по всем контрагентам с ролью carrier.
func BuildCarrierEfficiency(s *Snapshot, f Filter) []CarrierEfficiencyItem {
	acc := make(map[int64]*carrierAcc)
	for _, leg := range s.RouteLegs {
		carrierID, ok := s.carrierOf(leg)
		if !ok || !f.matchDate(s.legDate(leg)) {
			continue
		}
		a := acc[carrierID]
		if a == nil {
			a = &carrierAcc{}
			acc[carrierID] = a
		}

		a.total++
		if leg.Status == domain.RouteLegStatusCompleted {
			a.completed++
		}
		if len(s.events(leg.ID)) == 0 {
			continue
		}
		a.withEvents++

		late := s.hasDelayedEvent(leg.ID)
		if d, ok := s.departureDelay(leg); ok && d > 0 {
			late = true
		}
		if late {
			a.delayed++
		}

		departed, okDep := s.firstEvent(leg.ID, domain.EventTypeDeparted)
		arrived, okArr := s.firstEvent(leg.ID, domain.EventTypeArrived)
		if okDep && okArr && !arrived.Before(departed) {
			a.transit.add(arrived.Sub(departed).Hours())
		}
	}

	items := make([]CarrierEfficiencyItem, 0)
	for _, c := range s.Contractors {
		if !c.IsCarrier() || !f.matchContractor(c.ID) {
			continue
		}
		item := CarrierEfficiencyItem{
			ContractorID: c.ID,
			Name:         c.Name,
			Role:         c.Role,
			Synthetic:    true,
		}
		if a := acc[c.ID]; a != nil {
			item.TotalLegs = a.total
			item.CompletedLegs = a.completed
			if a.withEvents > 0 {
				item.Synthetic = false
				item.DelayPercent = percent(float64(a.delayed), float64(a.withEvents))
				if avg, ok := a.transit.value(); ok {
					item.AvgTimeHours = round1(avg)
				}
			}
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].ContractorID < items[j].ContractorID })
	return items
}
