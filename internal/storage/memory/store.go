package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// Store: in-memory хранилище всех сущностей за одним мьютексом.
// Одна блокировка даёт атомарность каскадных удалений и позволяет
// поиску заказов разрешать имена контрагентов.
type Store struct {
	mu sync.RWMutex

	nextContractorID int64
	contractors      map[int64]domain.Contractor
	warehouses       map[string]domain.Warehouse
	transport        map[string]domain.Transport
	orders           map[string]domain.Order
	cargos           map[string]domain.Cargo
	legs             map[string]domain.RouteLeg
	events           map[string]domain.TrackingEvent

	outbox *OutboxRepository
	now    func() time.Time
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		contractors: make(map[int64]domain.Contractor),
		warehouses:  make(map[string]domain.Warehouse),
		transport:   make(map[string]domain.Transport),
		orders:      make(map[string]domain.Order),
		cargos:      make(map[string]domain.Cargo),
		legs:        make(map[string]domain.RouteLeg),
		events:      make(map[string]domain.TrackingEvent),
		outbox:      NewOutboxRepository(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Repositories возвращает набор репозиториев поверх хранилища.
func (s *Store) Repositories() domain.Repositories {
	return domain.Repositories{
		Contractors: &contractorRepository{s: s},
		Warehouses:  &warehouseRepository{s: s},
		Transport:   &transportRepository{s: s},
		Orders:      &orderRepository{s: s},
		Cargos:      &cargoRepository{s: s},
		RouteLegs:   &routeLegRepository{s: s},
		Events:      &trackingEventRepository{s: s},
		Outbox:      s.outbox,
	}
}

func newID() string {
	return uuid.NewString()
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrConflict, fmt.Sprintf(format, args...))
}

// Каскадные удаления. Вызываются под s.mu.Lock().

func (s *Store) deleteOrderLocked(id string) {
	for cargoID, cargo := range s.cargos {
		if cargo.OrderID == id {
			s.deleteCargoLocked(cargoID)
		}
	}
	delete(s.orders, id)
}

func (s *Store) deleteCargoLocked(id string) {
	for legID, leg := range s.legs {
		if leg.CargoID == id {
			s.deleteRouteLegLocked(legID)
		}
	}
	delete(s.cargos, id)
}

func (s *Store) deleteRouteLegLocked(id string) {
	for eventID, event := range s.events {
		if event.RouteLegID == id {
			delete(s.events, eventID)
		}
	}
	delete(s.legs, id)
}

func (s *Store) contractorNameLocked(id int64) string {
	return s.contractors[id].Name
}
