package logistics

import (
	"context"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// ListRouteLegs возвращает участки по фильтру.
func (s *Service) ListRouteLegs(ctx context.Context, filter domain.RouteLegFilter) ([]domain.RouteLeg, error) {
	return s.repos.RouteLegs.List(ctx, filter)
}

// GetRouteLeg возвращает участок по id.
func (s *Service) GetRouteLeg(ctx context.Context, id string) (domain.RouteLeg, error) {
	return s.repos.RouteLegs.Get(ctx, id)
}

// CreateRouteLeg добавляет участок маршрута груза.
func (s *Service) CreateRouteLeg(ctx context.Context, l domain.RouteLeg) (created domain.RouteLeg, err error) {
	defer func() { s.observe(domain.AggregateRouteLeg, "create", created.ID, err) }()

	if l.Status == "" {
		l.Status = domain.RouteLegStatusPending
	}
	if err = l.Validate(); err != nil {
		return domain.RouteLeg{}, err
	}
	if err = s.checkRouteLegRefs(ctx, l, true); err != nil {
		return domain.RouteLeg{}, err
	}
	if created, err = s.repos.RouteLegs.Create(ctx, l); err != nil {
		return domain.RouteLeg{}, err
	}
	s.emit(ctx, domain.AggregateRouteLeg, created.ID, EventCreated, created)
	return created, nil
}

// UpdateRouteLeg частично обновляет участок; проверяются только изменённые ссылки.
func (s *Service) UpdateRouteLeg(ctx context.Context, id string, patch domain.RouteLegPatch) (updated domain.RouteLeg, err error) {
	defer func() { s.observe(domain.AggregateRouteLeg, "update", id, err) }()

	current, err := s.repos.RouteLegs.Get(ctx, id)
	if err != nil {
		return domain.RouteLeg{}, err
	}
	previous := current.Status
	patch.Apply(&current)
	if err = current.Validate(); err != nil {
		return domain.RouteLeg{}, err
	}

	changed := domain.RouteLeg{
		AssignedTransportID: patch.AssignedTransportID,
	}
	if patch.CargoID != nil {
		changed.CargoID = current.CargoID
	}
	if patch.StartWarehouseID != nil {
		changed.StartWarehouseID = current.StartWarehouseID
	}
	if patch.EndWarehouseID != nil {
		changed.EndWarehouseID = current.EndWarehouseID
	}
	if err = s.checkRouteLegRefs(ctx, changed, false); err != nil {
		return domain.RouteLeg{}, err
	}

	if updated, err = s.repos.RouteLegs.Update(ctx, id, patch); err != nil {
		return domain.RouteLeg{}, err
	}
	s.emit(ctx, domain.AggregateRouteLeg, id, EventUpdated, updated)
	if updated.Status != previous {
		s.emit(ctx, domain.AggregateRouteLeg, id, EventStatusChanged, statusChange{From: string(previous), To: string(updated.Status)})
	}
	return updated, nil
}

// DeleteRouteLeg удаляет участок вместе с его событиями.
func (s *Service) DeleteRouteLeg(ctx context.Context, id string) (err error) {
	defer func() { s.observe(domain.AggregateRouteLeg, "delete", id, err) }()

	removed, err := removeExisting(ctx, id, s.repos.RouteLegs.Get, s.repos.RouteLegs.Delete)
	if err != nil || !removed {
		return err
	}
	s.emit(ctx, domain.AggregateRouteLeg, id, EventDeleted, map[string]string{"id": id})
	return nil
}

// checkRouteLegRefs проверяет заполненные ссылки участка. При all=true
// обязательные ссылки проверяются всегда.
func (s *Service) checkRouteLegRefs(ctx context.Context, l domain.RouteLeg, all bool) error {
	if all || l.CargoID != "" {
		if err := s.requireCargo(ctx, l.CargoID); err != nil {
			return err
		}
	}
	if all || l.StartWarehouseID != "" {
		if err := s.requireWarehouse(ctx, domain.AggregateRouteLeg, "startWarehouseId", l.StartWarehouseID); err != nil {
			return err
		}
	}
	if all || l.EndWarehouseID != "" {
		if err := s.requireWarehouse(ctx, domain.AggregateRouteLeg, "endWarehouseId", l.EndWarehouseID); err != nil {
			return err
		}
	}
	if transport := l.TransportID(); transport != "" {
		return s.requireTransport(ctx, transport)
	}
	return nil
}
