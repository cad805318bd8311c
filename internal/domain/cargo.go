package domain

// CargoStatus: текущее состояние груза.
type CargoStatus string

const (
	CargoStatusAtWarehouse CargoStatus = "at_warehouse"
	CargoStatusInTransit   CargoStatus = "in_transit"
	CargoStatusDelivered   CargoStatus = "delivered"
	CargoStatusDelayed     CargoStatus = "delayed"
)

// Cargo: отслеживаемая единица отправки внутри заказа.
type Cargo struct {
	ID            string      `json:"id"`
	CargoID       string      `json:"cargoId" validate:"required"`
	OrderID       string      `json:"orderId" validate:"required"`
	Weight        float64     `json:"weight" validate:"gt=0"`
	Volume        float64     `json:"volume" validate:"gt=0"`
	Description   string      `json:"description"`
	CurrentStatus CargoStatus `json:"currentStatus" validate:"oneof=at_warehouse in_transit delivered delayed"`
}

// Validate проверяет поля груза.
func (c *Cargo) Validate() error {
	return validateStruct(c).OrNil()
}

// CargoPatch: частичное обновление груза. Трек-код не меняется.
type CargoPatch struct {
	OrderID       *string      `json:"orderId,omitempty"`
	Weight        *float64     `json:"weight,omitempty"`
	Volume        *float64     `json:"volume,omitempty"`
	Description   *string      `json:"description,omitempty"`
	CurrentStatus *CargoStatus `json:"currentStatus,omitempty"`
}

// Apply переносит заданные поля в груз.
func (p CargoPatch) Apply(c *Cargo) {
	if p.OrderID != nil {
		c.OrderID = *p.OrderID
	}
	if p.Weight != nil {
		c.Weight = *p.Weight
	}
	if p.Volume != nil {
		c.Volume = *p.Volume
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.CurrentStatus != nil {
		c.CurrentStatus = *p.CurrentStatus
	}
}
