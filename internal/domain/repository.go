package domain

import "context"

// Репозитории: граница хранения. Общий контракт:
//   - List применяет все критерии фильтра конъюнктивно;
//   - Get возвращает NotFoundError, если сущности нет;
//   - Create назначает идентификатор и временные метки;
//   - Update сливает только заданные поля патча, NotFoundError при отсутствии;
//   - Delete толерантен: удаление отсутствующего id не ошибка.
// Удаление владельца каскадно удаляет подчинённые сущности
// (Order → Cargo → RouteLeg → TrackingEvent) одной атомарной операцией.

// ContractorRepository хранит контрагентов.
type ContractorRepository interface {
	List(ctx context.Context, filter ContractorFilter) ([]Contractor, error)
	Get(ctx context.Context, id int64) (Contractor, error)
	Create(ctx context.Context, contractor Contractor) (Contractor, error)
	Update(ctx context.Context, id int64, patch ContractorPatch) (Contractor, error)
	Delete(ctx context.Context, id int64) error
}

// WarehouseRepository хранит склады.
type WarehouseRepository interface {
	List(ctx context.Context, filter WarehouseFilter) ([]Warehouse, error)
	Get(ctx context.Context, id string) (Warehouse, error)
	Create(ctx context.Context, warehouse Warehouse) (Warehouse, error)
	Update(ctx context.Context, id string, patch WarehousePatch) (Warehouse, error)
	Delete(ctx context.Context, id string) error
}

// TransportRepository хранит транспорт; идентификатор: госномер, задаётся вызывающим.
type TransportRepository interface {
	List(ctx context.Context, filter TransportFilter) ([]Transport, error)
	Get(ctx context.Context, regNumber string) (Transport, error)
	Create(ctx context.Context, transport Transport) (Transport, error)
	Update(ctx context.Context, regNumber string, patch TransportPatch) (Transport, error)
	Delete(ctx context.Context, regNumber string) error
}

// OrderRepository хранит заказы.
type OrderRepository interface {
	List(ctx context.Context, filter OrderFilter) ([]Order, error)
	Get(ctx context.Context, id string) (Order, error)
	Create(ctx context.Context, order Order) (Order, error)
	Update(ctx context.Context, id string, patch OrderPatch) (Order, error)
	Delete(ctx context.Context, id string) error
}

// CargoRepository хранит грузы.
type CargoRepository interface {
	List(ctx context.Context, filter CargoFilter) ([]Cargo, error)
	Get(ctx context.Context, id string) (Cargo, error)
	Create(ctx context.Context, cargo Cargo) (Cargo, error)
	Update(ctx context.Context, id string, patch CargoPatch) (Cargo, error)
	Delete(ctx context.Context, id string) error
}

// RouteLegRepository хранит участки маршрутов.
type RouteLegRepository interface {
	List(ctx context.Context, filter RouteLegFilter) ([]RouteLeg, error)
	Get(ctx context.Context, id string) (RouteLeg, error)
	Create(ctx context.Context, leg RouteLeg) (RouteLeg, error)
	Update(ctx context.Context, id string, patch RouteLegPatch) (RouteLeg, error)
	Delete(ctx context.Context, id string) error
}

// TrackingEventRepository хранит события. Обновления нет: журнал только дописывается.
type TrackingEventRepository interface {
	List(ctx context.Context, filter TrackingEventFilter) ([]TrackingEvent, error)
	Get(ctx context.Context, id string) (TrackingEvent, error)
	Create(ctx context.Context, event TrackingEvent) (TrackingEvent, error)
	Delete(ctx context.Context, id string) error
}

// Repositories объединяет все репозитории одного хранилища.
type Repositories struct {
	Contractors ContractorRepository
	Warehouses  WarehouseRepository
	Transport   TransportRepository
	Orders      OrderRepository
	Cargos      CargoRepository
	RouteLegs   RouteLegRepository
	Events      TrackingEventRepository
	Outbox      OutboxRepository
}
