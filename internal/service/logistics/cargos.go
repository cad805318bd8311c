package logistics

import (
	"context"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// ListCargos возвращает грузы по фильтру.
func (s *Service) ListCargos(ctx context.Context, filter domain.CargoFilter) ([]domain.Cargo, error) {
	return s.repos.Cargos.List(ctx, filter)
}

// GetCargo возвращает груз по id.
func (s *Service) GetCargo(ctx context.Context, id string) (domain.Cargo, error) {
	return s.repos.Cargos.Get(ctx, id)
}

// CreateCargo добавляет груз в существующий заказ. Новый груз по умолчанию на складе.
func (s *Service) CreateCargo(ctx context.Context, c domain.Cargo) (created domain.Cargo, err error) {
	defer func() { s.observe(domain.AggregateCargo, "create", created.ID, err) }()

	if c.CurrentStatus == "" {
		c.CurrentStatus = domain.CargoStatusAtWarehouse
	}
	if err = c.Validate(); err != nil {
		return domain.Cargo{}, err
	}
	if err = s.requireOrder(ctx, c.OrderID); err != nil {
		return domain.Cargo{}, err
	}
	if created, err = s.repos.Cargos.Create(ctx, c); err != nil {
		return domain.Cargo{}, err
	}
	s.emit(ctx, domain.AggregateCargo, created.ID, EventCreated, created)
	return created, nil
}

// UpdateCargo частично обновляет груз.
func (s *Service) UpdateCargo(ctx context.Context, id string, patch domain.CargoPatch) (updated domain.Cargo, err error) {
	defer func() { s.observe(domain.AggregateCargo, "update", id, err) }()

	current, err := s.repos.Cargos.Get(ctx, id)
	if err != nil {
		return domain.Cargo{}, err
	}
	previous := current.CurrentStatus
	patch.Apply(&current)
	if err = current.Validate(); err != nil {
		return domain.Cargo{}, err
	}
	if patch.OrderID != nil {
		if err = s.requireOrder(ctx, current.OrderID); err != nil {
			return domain.Cargo{}, err
		}
	}
	if updated, err = s.repos.Cargos.Update(ctx, id, patch); err != nil {
		return domain.Cargo{}, err
	}

	s.emit(ctx, domain.AggregateCargo, id, EventUpdated, updated)
	if updated.CurrentStatus != previous {
		s.emit(ctx, domain.AggregateCargo, id, EventStatusChanged, statusChange{From: string(previous), To: string(updated.CurrentStatus)})
	}
	return updated, nil
}

// DeleteCargo удаляет груз вместе с участками и событиями. Повторное удаление не ошибка.
func (s *Service) DeleteCargo(ctx context.Context, id string) (err error) {
	defer func() { s.observe(domain.AggregateCargo, "delete", id, err) }()

	removed, err := removeExisting(ctx, id, s.repos.Cargos.Get, s.repos.Cargos.Delete)
	if err != nil || !removed {
		return err
	}
	s.emit(ctx, domain.AggregateCargo, id, EventDeleted, map[string]string{"id": id})
	return nil
}

func (s *Service) requireCargo(ctx context.Context, id string) error {
	_, err := s.repos.Cargos.Get(ctx, id)
	if domain.IsNotFound(err) {
		return domain.NewReferentialError(domain.AggregateRouteLeg, "cargoId", id)
	}
	return err
}
