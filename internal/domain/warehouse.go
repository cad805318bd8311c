package domain

// WarehouseType: тип склада.
type WarehouseType string

const (
	WarehouseTypeMain         WarehouseType = "main"
	WarehouseTypeTransit      WarehouseType = "transit"
	WarehouseTypeDistribution WarehouseType = "distribution"
)

// Warehouse: склад или транзитный пункт.
type Warehouse struct {
	ID      string        `json:"id"`
	Name    string        `json:"name" validate:"required"`
	Address string        `json:"address" validate:"required"`
	Type    WarehouseType `json:"type" validate:"oneof=main transit distribution"`
	// ContactPersonID: слабая ссылка на контрагента, только для отображения.
	ContactPersonID *int64 `json:"contactPersonId,omitempty" validate:"omitempty,gt=0"`
	// CapacityM3: полезный объём склада; 0 означает «неизвестно».
	CapacityM3 float64 `json:"capacityM3,omitempty" validate:"gte=0"`
}

// Validate проверяет поля склада.
func (w *Warehouse) Validate() error {
	return validateStruct(w).OrNil()
}

// WarehousePatch: частичное обновление склада.
type WarehousePatch struct {
	Name            *string        `json:"name,omitempty"`
	Address         *string        `json:"address,omitempty"`
	Type            *WarehouseType `json:"type,omitempty"`
	ContactPersonID *int64         `json:"contactPersonId,omitempty"`
	CapacityM3      *float64       `json:"capacityM3,omitempty"`
}

// Apply переносит заданные поля в склад.
func (p WarehousePatch) Apply(w *Warehouse) {
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Address != nil {
		w.Address = *p.Address
	}
	if p.Type != nil {
		w.Type = *p.Type
	}
	if p.ContactPersonID != nil {
		id := *p.ContactPersonID
		w.ContactPersonID = &id
	}
	if p.CapacityM3 != nil {
		w.CapacityM3 = *p.CapacityM3
	}
}
