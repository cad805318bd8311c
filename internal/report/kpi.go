package report

import (
	"sort"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// KPIReport: сводные показатели по заказам.
type KPIReport struct {
	OnTimePercentage int               `json:"onTimePercentage"`
	AvgDelayDays     float64           `json:"avgDelayDays"`
	OrdersInProgress int               `json:"ordersInProgress"`
	TotalDelivered   int               `json:"totalDelivered"`
	TotalOrders      int               `json:"totalOrders"`
	DelayReasons     []DelayReasonStat `json:"delayReasons"`
}

// DelayReasonStat: доля причины среди всех событий задержки.
type DelayReasonStat struct {
	Reason     domain.DelayReason `json:"reason"`
	Label      string             `json:"label"`
	Count      int                `json:"count"`
	Percentage int                `json:"percentage"`
}

// BuildKPI считает KPI по отфильтрованным заказам. Причины и средняя
// задержка берутся из участков грузов этих заказов.
func BuildKPI(s *Snapshot, f Filter) KPIReport {
	var (
		report  = KPIReport{DelayReasons: []DelayReasonStat{}}
		reasons = make(map[domain.DelayReason]int)
		delayed int
		delay   mean
	)

	for _, o := range s.Orders {
		if !matchOrder(o, f) {
			continue
		}
		report.TotalOrders++
		switch {
		case o.Status == domain.OrderStatusDelivered:
			report.TotalDelivered++
		case o.Status.InProgress():
			report.OrdersInProgress++
		}

		for _, cargo := range s.cargosByOrder[o.ID] {
			for _, leg := range s.legs(cargo.ID) {
				for _, e := range s.events(leg.ID) {
					if e.EventType != domain.EventTypeDelayed {
						continue
					}
					reason := e.DelayReason
					if !reason.Valid() {
						reason = domain.DelayReasonOther
					}
					reasons[reason]++
					delayed++
				}
				if d, ok := s.departureDelay(leg); ok && d > 0 {
					delay.add(d.Hours() / 24)
				}
			}
		}
	}

	report.OnTimePercentage = percent(float64(report.TotalDelivered), float64(report.TotalOrders))
	if avg, ok := delay.value(); ok {
		report.AvgDelayDays = round1(avg)
	}

	for reason, count := range reasons {
		report.DelayReasons = append(report.DelayReasons, DelayReasonStat{
			Reason:     reason,
			Label:      reason.Label(),
			Count:      count,
			Percentage: percent(float64(count), float64(delayed)),
		})
	}
	sort.Slice(report.DelayReasons, func(i, j int) bool {
		a, b := report.DelayReasons[i], report.DelayReasons[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Reason < b.Reason
	})

	return report
}
