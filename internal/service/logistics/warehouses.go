package logistics

import (
	"context"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// ListWarehouses возвращает склады по фильтру.
func (s *Service) ListWarehouses(ctx context.Context, filter domain.WarehouseFilter) ([]domain.Warehouse, error) {
	return s.repos.Warehouses.List(ctx, filter)
}

// GetWarehouse возвращает склад по id.
func (s *Service) GetWarehouse(ctx context.Context, id string) (domain.Warehouse, error) {
	return s.repos.Warehouses.Get(ctx, id)
}

// CreateWarehouse добавляет склад; контактное лицо должно существовать.
func (s *Service) CreateWarehouse(ctx context.Context, w domain.Warehouse) (created domain.Warehouse, err error) {
	defer func() { s.observe(domain.AggregateWarehouse, "create", created.ID, err) }()

	if err = w.Validate(); err != nil {
		return domain.Warehouse{}, err
	}
	if err = s.checkContactPerson(ctx, w.ContactPersonID); err != nil {
		return domain.Warehouse{}, err
	}
	if created, err = s.repos.Warehouses.Create(ctx, w); err != nil {
		return domain.Warehouse{}, err
	}
	s.emit(ctx, domain.AggregateWarehouse, created.ID, EventCreated, created)
	return created, nil
}

// UpdateWarehouse частично обновляет склад.
func (s *Service) UpdateWarehouse(ctx context.Context, id string, patch domain.WarehousePatch) (updated domain.Warehouse, err error) {
	defer func() { s.observe(domain.AggregateWarehouse, "update", id, err) }()

	current, err := s.repos.Warehouses.Get(ctx, id)
	if err != nil {
		return domain.Warehouse{}, err
	}
	patch.Apply(&current)
	if err = current.Validate(); err != nil {
		return domain.Warehouse{}, err
	}
	if patch.ContactPersonID != nil {
		if err = s.checkContactPerson(ctx, patch.ContactPersonID); err != nil {
			return domain.Warehouse{}, err
		}
	}
	if updated, err = s.repos.Warehouses.Update(ctx, id, patch); err != nil {
		return domain.Warehouse{}, err
	}
	s.emit(ctx, domain.AggregateWarehouse, id, EventUpdated, updated)
	return updated, nil
}

// DeleteWarehouse удаляет склад. Участки маршрутов со ссылкой на него не трогаются.
func (s *Service) DeleteWarehouse(ctx context.Context, id string) (err error) {
	defer func() { s.observe(domain.AggregateWarehouse, "delete", id, err) }()

	removed, err := removeExisting(ctx, id, s.repos.Warehouses.Get, s.repos.Warehouses.Delete)
	if err != nil || !removed {
		return err
	}
	s.emit(ctx, domain.AggregateWarehouse, id, EventDeleted, map[string]string{"id": id})
	return nil
}

func (s *Service) checkContactPerson(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := s.requireContractor(ctx, domain.AggregateWarehouse, "contactPersonId", *id)
	return err
}

func (s *Service) requireWarehouse(ctx context.Context, entity, field, id string) error {
	_, err := s.repos.Warehouses.Get(ctx, id)
	if domain.IsNotFound(err) {
		return domain.NewReferentialError(entity, field, id)
	}
	return err
}
