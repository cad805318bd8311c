package logistics

import (
	"context"
	"strconv"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// ListContractors возвращает контрагентов по фильтру.
func (s *Service) ListContractors(ctx context.Context, filter domain.ContractorFilter) ([]domain.Contractor, error) {
	return s.repos.Contractors.List(ctx, filter)
}

// GetContractor возвращает контрагента по id.
func (s *Service) GetContractor(ctx context.Context, id int64) (domain.Contractor, error) {
	return s.repos.Contractors.Get(ctx, id)
}

// CreateContractor добавляет контрагента.
func (s *Service) CreateContractor(ctx context.Context, c domain.Contractor) (created domain.Contractor, err error) {
	defer func() { s.observe(domain.AggregateContractor, "create", idString(created.ID), err) }()

	if err = c.Validate(); err != nil {
		return domain.Contractor{}, err
	}
	if created, err = s.repos.Contractors.Create(ctx, c); err != nil {
		return domain.Contractor{}, err
	}
	s.emit(ctx, domain.AggregateContractor, idString(created.ID), EventCreated, created)
	return created, nil
}

// UpdateContractor частично обновляет контрагента. Результат слияния проверяется целиком.
func (s *Service) UpdateContractor(ctx context.Context, id int64, patch domain.ContractorPatch) (updated domain.Contractor, err error) {
	defer func() { s.observe(domain.AggregateContractor, "update", idString(id), err) }()

	current, err := s.repos.Contractors.Get(ctx, id)
	if err != nil {
		return domain.Contractor{}, err
	}
	patch.Apply(&current)
	if err = current.Validate(); err != nil {
		return domain.Contractor{}, err
	}
	if updated, err = s.repos.Contractors.Update(ctx, id, patch); err != nil {
		return domain.Contractor{}, err
	}
	s.emit(ctx, domain.AggregateContractor, idString(id), EventUpdated, updated)
	return updated, nil
}

// DeleteContractor удаляет контрагента. Заказы и транспорт со ссылкой на
// него остаются, в отчётах имя заменяется на заглушку.
func (s *Service) DeleteContractor(ctx context.Context, id int64) (err error) {
	defer func() { s.observe(domain.AggregateContractor, "delete", idString(id), err) }()

	removed, err := removeExisting(ctx, id, s.repos.Contractors.Get, s.repos.Contractors.Delete)
	if err != nil || !removed {
		return err
	}
	s.emit(ctx, domain.AggregateContractor, idString(id), EventDeleted, map[string]int64{"id": id})
	return nil
}

func (s *Service) requireContractor(ctx context.Context, entity, field string, id int64) (domain.Contractor, error) {
	c, err := s.repos.Contractors.Get(ctx, id)
	if domain.IsNotFound(err) {
		return domain.Contractor{}, domain.NewReferentialError(entity, field, id)
	}
	return c, err
}

func idString(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
