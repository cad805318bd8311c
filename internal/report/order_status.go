package report

import (
	"sort"
	"time"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// OrderStatusItem: строка отчёта по статусам заказов.
type OrderStatusItem struct {
	ID            string             `json:"id"`
	OrderNumber   string             `json:"orderNumber"`
	CreatedAt     time.Time          `json:"createdAt"`
	SenderID      int64              `json:"senderId"`
	SenderName    string             `json:"senderName"`
	RecipientID   int64              `json:"recipientId"`
	RecipientName string             `json:"recipientName"`
	Status        domain.OrderStatus `json:"status"`
	ShipmentDate  *time.Time         `json:"shipmentDate,omitempty"`
	DeliveryDate  *time.Time         `json:"deliveryDate,omitempty"`
	CycleDays     int                `json:"cycleDays"`
	IsDelayed     bool               `json:"isDelayed"`
}

// BuildOrderStatus строит отчёт: новые заказы первыми.
func BuildOrderStatus(s *Snapshot, f Filter) []OrderStatusItem {
	items := make([]OrderStatusItem, 0, len(s.Orders))
	for _, o := range s.Orders {
		if !matchOrder(o, f) {
			continue
		}
		items = append(items, OrderStatusItem{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			CreatedAt:     o.CreatedAt,
			SenderID:      o.SenderID,
			SenderName:    s.contractorName(o.SenderID),
			RecipientID:   o.RecipientID,
			RecipientName: s.contractorName(o.RecipientID),
			Status:        o.Status,
			ShipmentDate:  o.ShipmentDate,
			DeliveryDate:  o.DeliveryDate,
			CycleDays:     o.CycleDays(),
			IsDelayed:     s.orderDelayed(o.ID),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items
}

func matchOrder(o domain.Order, f Filter) bool {
	created := o.CreatedAt
	return f.matchDate(&created) && f.matchContractor(o.SenderID, o.RecipientID)
}
