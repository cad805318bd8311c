package report

import (
	"time"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// UnknownName подставляется вместо имени, если ссылка не разрешается.
const UnknownName = "Unknown"

// Data: сырые списки сущностей, из которых строится снимок.
type Data struct {
	Contractors []domain.Contractor
	Warehouses  []domain.Warehouse
	Transport   []domain.Transport
	Orders      []domain.Order
	Cargos      []domain.Cargo
	RouteLegs   []domain.RouteLeg
	Events      []domain.TrackingEvent
}

// Snapshot: согласованный на момент загрузки граф сущностей с индексами по id.
// Снимок не изменяется после построения и безопасен для параллельного чтения.
type Snapshot struct {
	Data

	LoadedAt time.Time

	contractorByID map[int64]domain.Contractor
	warehouseByID  map[string]domain.Warehouse
	transportByReg map[string]domain.Transport
	orderByID      map[string]domain.Order
	cargoByID      map[string]domain.Cargo
	cargosByOrder  map[string][]domain.Cargo
	legsByCargo    map[string][]domain.RouteLeg
	eventsByLeg    map[string][]domain.TrackingEvent
}

// NewSnapshot строит индексы. Участки каждого груза упорядочиваются по
// SequenceOrder, события каждого участка: по времени: порядок хранения не важен.
func NewSnapshot(data Data) *Snapshot {
	s := &Snapshot{
		Data:           data,
		LoadedAt:       time.Now().UTC(),
		contractorByID: make(map[int64]domain.Contractor, len(data.Contractors)),
		warehouseByID:  make(map[string]domain.Warehouse, len(data.Warehouses)),
		transportByReg: make(map[string]domain.Transport, len(data.Transport)),
		orderByID:      make(map[string]domain.Order, len(data.Orders)),
		cargoByID:      make(map[string]domain.Cargo, len(data.Cargos)),
		cargosByOrder:  make(map[string][]domain.Cargo),
		legsByCargo:    make(map[string][]domain.RouteLeg),
		eventsByLeg:    make(map[string][]domain.TrackingEvent),
	}

	for _, c := range data.Contractors {
		s.contractorByID[c.ID] = c
	}
	for _, w := range data.Warehouses {
		s.warehouseByID[w.ID] = w
	}
	for _, t := range data.Transport {
		s.transportByReg[t.RegNumber] = t
	}
	for _, o := range data.Orders {
		s.orderByID[o.ID] = o
	}
	for _, c := range data.Cargos {
		s.cargoByID[c.ID] = c
		s.cargosByOrder[c.OrderID] = append(s.cargosByOrder[c.OrderID], c)
	}
	for _, l := range data.RouteLegs {
		s.legsByCargo[l.CargoID] = append(s.legsByCargo[l.CargoID], l)
	}
	for _, e := range data.Events {
		s.eventsByLeg[e.RouteLegID] = append(s.eventsByLeg[e.RouteLegID], e)
	}
	for cargoID := range s.legsByCargo {
		domain.SortRouteLegs(s.legsByCargo[cargoID])
	}
	for legID := range s.eventsByLeg {
		domain.SortEvents(s.eventsByLeg[legID])
	}

	return s
}

func (s *Snapshot) contractorName(id int64) string {
	if c, ok := s.contractorByID[id]; ok {
		return c.Name
	}
	return UnknownName
}

func (s *Snapshot) warehouseName(id string) string {
	if w, ok := s.warehouseByID[id]; ok {
		return w.Name
	}
	return UnknownName
}

// legs возвращает участки груза по возрастанию SequenceOrder.
func (s *Snapshot) legs(cargoID string) []domain.RouteLeg {
	return s.legsByCargo[cargoID]
}

// events возвращает события участка по возрастанию времени.
func (s *Snapshot) events(legID string) []domain.TrackingEvent {
	return s.eventsByLeg[legID]
}

// carrierOf разрешает цепочку участок → транспорт → перевозчик.
func (s *Snapshot) carrierOf(leg domain.RouteLeg) (int64, bool) {
	t, ok := s.transportByReg[leg.TransportID()]
	if !ok || t.ContractorID == nil {
		return 0, false
	}
	return *t.ContractorID, true
}

// legDate: основная дата участка: плановое начало, иначе самое раннее событие.
func (s *Snapshot) legDate(leg domain.RouteLeg) *time.Time {
	if leg.PlannedStart != nil {
		return leg.PlannedStart
	}
	if events := s.events(leg.ID); len(events) > 0 {
		ts := events[0].Timestamp
		return &ts
	}
	return nil
}

// firstEvent возвращает время первого события заданного типа на участке.
func (s *Snapshot) firstEvent(legID string, eventType domain.EventType) (time.Time, bool) {
	for _, e := range s.events(legID) {
		if e.EventType == eventType {
			return e.Timestamp, true
		}
	}
	return time.Time{}, false
}

func (s *Snapshot) hasDelayedEvent(legID string) bool {
	_, ok := s.firstEvent(legID, domain.EventTypeDelayed)
	return ok
}

// departureDelay: насколько фактическое отправление позже планового.
// ok=false, если нет плана или события отправления.
func (s *Snapshot) departureDelay(leg domain.RouteLeg) (time.Duration, bool) {
	if leg.PlannedStart == nil {
		return 0, false
	}
	departed, ok := s.firstEvent(leg.ID, domain.EventTypeDeparted)
	if !ok {
		return 0, false
	}
	return departed.Sub(*leg.PlannedStart), true
}

// orderParticipants: отправитель и получатель заказа, которому принадлежит груз.
func (s *Snapshot) orderParticipants(orderID string) []int64 {
	o, ok := s.orderByID[orderID]
	if !ok {
		return nil
	}
	return []int64{o.SenderID, o.RecipientID}
}

// legParticipants: участники заказа груза участка. Для участка без груза в
// снимке: nil.
func (s *Snapshot) legParticipants(leg domain.RouteLeg) []int64 {
	cargo, ok := s.cargoByID[leg.CargoID]
	if !ok {
		return nil
	}
	return s.orderParticipants(cargo.OrderID)
}

// cargoParticipants: участники заказа груза и владельцы назначенного на его участки транспорта.
func (s *Snapshot) cargoParticipants(cargo domain.Cargo) []int64 {
	ids := s.orderParticipants(cargo.OrderID)
	for _, leg := range s.legs(cargo.ID) {
		if carrier, ok := s.carrierOf(leg); ok {
			ids = append(ids, carrier)
		}
	}
	return ids
}

// orderDelayed: груз заказа в статусе delayed или на одном из участков есть событие delayed.
func (s *Snapshot) orderDelayed(orderID string) bool {
	for _, cargo := range s.cargosByOrder[orderID] {
		if cargo.CurrentStatus == domain.CargoStatusDelayed {
			return true
		}
		for _, leg := range s.legs(cargo.ID) {
			if s.hasDelayedEvent(leg.ID) {
				return true
			}
		}
	}
	return false
}
