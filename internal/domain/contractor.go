package domain

import "time"

// ContractorRole: роль контрагента в цепочке поставок.
type ContractorRole string

const (
	// ContractorRoleSupplier: поставщик, как правило отправитель заказа.
	ContractorRoleSupplier ContractorRole = "supplier"
	// ContractorRoleCarrier: перевозчик, владеет транспортом.
	ContractorRoleCarrier ContractorRole = "carrier"
	// ContractorRoleClient: клиент, как правило получатель.
	ContractorRoleClient ContractorRole = "client"
)

// Valid проверяет, что роль относится к поддерживаемым значениям.
func (r ContractorRole) Valid() bool {
	switch r {
	case ContractorRoleSupplier, ContractorRoleCarrier, ContractorRoleClient:
		return true
	default:
		return false
	}
}

// Contractor: контрагент. Идентификатор числовой, назначается хранилищем.
type Contractor struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name" validate:"required"`
	Role         ContractorRole `json:"role" validate:"oneof=supplier carrier client"`
	Contact      string         `json:"contact"`
	INN          string         `json:"inn,omitempty" validate:"omitempty,inn"`
	LegalAddress string         `json:"legalAddress,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Validate проверяет поля контрагента.
func (c *Contractor) Validate() error {
	return validateStruct(c).OrNil()
}

// IsCarrier сообщает, может ли контрагент владеть транспортом.
func (c *Contractor) IsCarrier() bool {
	return c.Role == ContractorRoleCarrier
}

// ContractorPatch: частичное обновление контрагента: nil-поля не трогаем.
// Роль после создания не меняется.
type ContractorPatch struct {
	Name         *string `json:"name,omitempty"`
	Contact      *string `json:"contact,omitempty"`
	INN          *string `json:"inn,omitempty"`
	LegalAddress *string `json:"legalAddress,omitempty"`
}

// Apply переносит заданные поля в контрагента.
func (p ContractorPatch) Apply(c *Contractor) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Contact != nil {
		c.Contact = *p.Contact
	}
	if p.INN != nil {
		c.INN = *p.INN
	}
	if p.LegalAddress != nil {
		c.LegalAddress = *p.LegalAddress
	}
}
