package domain

import (
	"strings"
	"time"
)

// Фильтры списков. Все заданные критерии применяются конъюнктивно (AND),
// пустой фильтр возвращает всё.

// ContractorFilter: фильтр контрагентов.
type ContractorFilter struct {
	Role   ContractorRole
	Search string // по имени и контактам
}

// Match проверяет контрагента на соответствие фильтру.
func (f ContractorFilter) Match(c Contractor) bool {
	if f.Role != "" && c.Role != f.Role {
		return false
	}
	return containsFold(f.Search, c.Name, c.Contact)
}

// WarehouseFilter: фильтр складов.
type WarehouseFilter struct {
	Type   WarehouseType
	Search string // по названию и адресу
}

// Match проверяет склад на соответствие фильтру.
func (f WarehouseFilter) Match(w Warehouse) bool {
	if f.Type != "" && w.Type != f.Type {
		return false
	}
	return containsFold(f.Search, w.Name, w.Address)
}

// TransportFilter: фильтр транспорта.
type TransportFilter struct {
	Type         TransportType
	ContractorID *int64
	Search       string // по госномеру
}

// Match проверяет транспорт на соответствие фильтру.
func (f TransportFilter) Match(t Transport) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.ContractorID != nil && (t.ContractorID == nil || *t.ContractorID != *f.ContractorID) {
		return false
	}
	return containsFold(f.Search, t.RegNumber)
}

// OrderFilter: фильтр заказов. Даты ограничивают CreatedAt включительно.
type OrderFilter struct {
	Status      OrderStatus
	SenderID    *int64
	RecipientID *int64
	DateFrom    *time.Time
	DateTo      *time.Time
	Search      string // по номеру заказа и именам отправителя/получателя
}

// Match проверяет заказ на соответствие фильтру. contractorName разрешает
// имена участников для поиска; может быть nil.
func (f OrderFilter) Match(o Order, contractorName func(id int64) string) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.SenderID != nil && o.SenderID != *f.SenderID {
		return false
	}
	if f.RecipientID != nil && o.RecipientID != *f.RecipientID {
		return false
	}
	if !InRange(o.CreatedAt, f.DateFrom, f.DateTo) {
		return false
	}
	if f.Search == "" {
		return true
	}
	fields := []string{o.OrderNumber}
	if contractorName != nil {
		fields = append(fields, contractorName(o.SenderID), contractorName(o.RecipientID))
	}
	return containsFold(f.Search, fields...)
}

// CargoFilter: фильтр грузов.
type CargoFilter struct {
	Status  CargoStatus
	OrderID string
	Search  string // по трек-коду и описанию
}

// Match проверяет груз на соответствие фильтру.
func (f CargoFilter) Match(c Cargo) bool {
	if f.Status != "" && c.CurrentStatus != f.Status {
		return false
	}
	if f.OrderID != "" && c.OrderID != f.OrderID {
		return false
	}
	return containsFold(f.Search, c.CargoID, c.Description)
}

// RouteLegFilter: фильтр участков маршрута.
type RouteLegFilter struct {
	CargoID             string
	Status              RouteLegStatus
	AssignedTransportID string
	WarehouseID         string // участок начинается или заканчивается на складе
}

// Match проверяет участок на соответствие фильтру.
func (f RouteLegFilter) Match(l RouteLeg) bool {
	if f.CargoID != "" && l.CargoID != f.CargoID {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.AssignedTransportID != "" && l.TransportID() != f.AssignedTransportID {
		return false
	}
	if f.WarehouseID != "" && l.StartWarehouseID != f.WarehouseID && l.EndWarehouseID != f.WarehouseID {
		return false
	}
	return true
}

// TrackingEventFilter: фильтр событий. From/To ограничивают Timestamp включительно.
type TrackingEventFilter struct {
	RouteLegID string
	EventType  EventType
	From       *time.Time
	To         *time.Time
}

// Match проверяет событие на соответствие фильтру.
func (f TrackingEventFilter) Match(e TrackingEvent) bool {
	if f.RouteLegID != "" && e.RouteLegID != f.RouteLegID {
		return false
	}
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	return InRange(e.Timestamp, f.From, f.To)
}

// InRange проверяет попадание t в [from, to]; nil-границы не ограничивают.
func InRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

// containsFold: регистронезависимый поиск подстроки хотя бы в одном поле.
// Пустой запрос совпадает со всем.
func containsFold(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
