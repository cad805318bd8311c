package report

import "github.com/vladislavdragonenkov/scm/internal/domain"

// DashboardStats: плитки главной страницы.
type DashboardStats struct {
	ActiveOrders        int     `json:"activeOrders"`
	InTransit           int     `json:"inTransit"`
	Delivered           int     `json:"delivered"`
	AverageDeliveryDays float64 `json:"averageDeliveryDays"`
	OnTimeDeliveryRate  int     `json:"onTimeDeliveryRate"`
	TotalCargos         int     `json:"totalCargos"`
	TotalContractors    int     `json:"totalContractors"`
	TotalWarehouses     int     `json:"totalWarehouses"`
	TotalTransport      int     `json:"totalTransport"`
}

// BuildDashboard считает сводку без фильтров. Доставка в срок: доставленный
// заказ без задержанных грузов и событий задержки.
func BuildDashboard(s *Snapshot) DashboardStats {
	stats := DashboardStats{
		TotalCargos:      len(s.Cargos),
		TotalContractors: len(s.Contractors),
		TotalWarehouses:  len(s.Warehouses),
		TotalTransport:   len(s.Transport),
	}

	var cycle mean
	onTime := 0
	for _, o := range s.Orders {
		if o.Status.InProgress() {
			stats.ActiveOrders++
		}
		switch o.Status {
		case domain.OrderStatusInTransit:
			stats.InTransit++
		case domain.OrderStatusDelivered:
			stats.Delivered++
			if o.ShipmentDate != nil && o.DeliveryDate != nil {
				cycle.add(float64(o.CycleDays()))
			}
			if !s.orderDelayed(o.ID) {
				onTime++
			}
		}
	}

	if avg, ok := cycle.value(); ok {
		stats.AverageDeliveryDays = round1(avg)
	}
	stats.OnTimeDeliveryRate = percent(float64(onTime), float64(stats.Delivered))
	return stats
}
