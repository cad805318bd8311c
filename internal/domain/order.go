package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending: заказ создан, отгрузка ещё не началась.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusInTransit: хотя бы один груз в пути.
	OrderStatusInTransit OrderStatus = "in_transit"
	// OrderStatusDelivered: заказ доставлен получателю.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled: заказ отменён.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// InProgress сообщает, считается ли заказ незавершённым.
func (s OrderStatus) InProgress() bool {
	return s == OrderStatusPending || s == OrderStatusInTransit
}

// Order: заказ на перевозку. Грузы ссылаются на заказ через Cargo.OrderID.
type Order struct {
	ID           string          `json:"id"`
	OrderNumber  string          `json:"orderNumber" validate:"required"`
	CreatedAt    time.Time       `json:"createdAt"`
	ShipmentDate *time.Time      `json:"shipmentDate,omitempty"`
	DeliveryDate *time.Time      `json:"deliveryDate,omitempty"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	Status       OrderStatus     `json:"status" validate:"oneof=pending in_transit delivered cancelled"`
	// SenderID и RecipientID: слабые ссылки на контрагентов.
	SenderID    int64 `json:"senderId" validate:"required,nefield=RecipientID"`
	RecipientID int64 `json:"recipientId" validate:"required"`
}

// Validate проверяет поля заказа и перекрёстные инварианты.
func (o *Order) Validate() error {
	verr := validateStruct(o)
	if o.TotalCost.IsNegative() {
		verr.Add("totalCost", "must be non-negative")
	}
	if o.ShipmentDate != nil && o.DeliveryDate != nil && o.DeliveryDate.Before(*o.ShipmentDate) {
		verr.Add("deliveryDate", "must not be before shipmentDate")
	}
	return verr.OrNil()
}

// CycleDays: число суток между отгрузкой и доставкой, округлённое вверх.
// Если одной из дат нет, возвращает 0.
func (o *Order) CycleDays() int {
	if o.ShipmentDate == nil || o.DeliveryDate == nil {
		return 0
	}
	return CeilDays(o.DeliveryDate.Sub(*o.ShipmentDate))
}

// CeilDays округляет длительность вверх до целых суток.
func CeilDays(d time.Duration) int {
	const day = 24 * time.Hour
	days := int(d / day)
	if d%day > 0 {
		days++
	}
	return days
}

// OrderPatch: частичное обновление заказа. Номер заказа не меняется.
type OrderPatch struct {
	ShipmentDate *time.Time       `json:"shipmentDate,omitempty"`
	DeliveryDate *time.Time       `json:"deliveryDate,omitempty"`
	TotalCost    *decimal.Decimal `json:"totalCost,omitempty"`
	Status       *OrderStatus     `json:"status,omitempty"`
	SenderID     *int64           `json:"senderId,omitempty"`
	RecipientID  *int64           `json:"recipientId,omitempty"`
}

// Apply переносит заданные поля в заказ.
func (p OrderPatch) Apply(o *Order) {
	if p.ShipmentDate != nil {
		t := *p.ShipmentDate
		o.ShipmentDate = &t
	}
	if p.DeliveryDate != nil {
		t := *p.DeliveryDate
		o.DeliveryDate = &t
	}
	if p.TotalCost != nil {
		o.TotalCost = *p.TotalCost
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.SenderID != nil {
		o.SenderID = *p.SenderID
	}
	if p.RecipientID != nil {
		o.RecipientID = *p.RecipientID
	}
}
