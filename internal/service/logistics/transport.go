package logistics

import (
	"context"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// ListTransport возвращает транспорт по фильтру.
func (s *Service) ListTransport(ctx context.Context, filter domain.TransportFilter) ([]domain.Transport, error) {
	return s.repos.Transport.List(ctx, filter)
}

// GetTransport возвращает транспорт по госномеру.
func (s *Service) GetTransport(ctx context.Context, regNumber string) (domain.Transport, error) {
	return s.repos.Transport.Get(ctx, regNumber)
}

// CreateTransport регистрирует транспорт. Владелец, если задан,: перевозчик.
func (s *Service) CreateTransport(ctx context.Context, t domain.Transport) (created domain.Transport, err error) {
	defer func() { s.observe(domain.AggregateTransport, "create", t.RegNumber, err) }()

	if err = t.Validate(); err != nil {
		return domain.Transport{}, err
	}
	if err = s.checkOwner(ctx, t.ContractorID); err != nil {
		return domain.Transport{}, err
	}
	if created, err = s.repos.Transport.Create(ctx, t); err != nil {
		return domain.Transport{}, err
	}
	s.emit(ctx, domain.AggregateTransport, created.RegNumber, EventCreated, created)
	return created, nil
}

// UpdateTransport частично обновляет транспорт.
func (s *Service) UpdateTransport(ctx context.Context, regNumber string, patch domain.TransportPatch) (updated domain.Transport, err error) {
	defer func() { s.observe(domain.AggregateTransport, "update", regNumber, err) }()

	current, err := s.repos.Transport.Get(ctx, regNumber)
	if err != nil {
		return domain.Transport{}, err
	}
	patch.Apply(&current)
	if err = current.Validate(); err != nil {
		return domain.Transport{}, err
	}
	if patch.ContractorID != nil {
		if err = s.checkOwner(ctx, patch.ContractorID); err != nil {
			return domain.Transport{}, err
		}
	}
	if updated, err = s.repos.Transport.Update(ctx, regNumber, patch); err != nil {
		return domain.Transport{}, err
	}
	s.emit(ctx, domain.AggregateTransport, regNumber, EventUpdated, updated)
	return updated, nil
}

// DeleteTransport удаляет транспорт.
func (s *Service) DeleteTransport(ctx context.Context, regNumber string) (err error) {
	defer func() { s.observe(domain.AggregateTransport, "delete", regNumber, err) }()

	removed, err := removeExisting(ctx, regNumber, s.repos.Transport.Get, s.repos.Transport.Delete)
	if err != nil || !removed {
		return err
	}
	s.emit(ctx, domain.AggregateTransport, regNumber, EventDeleted, map[string]string{"regNumber": regNumber})
	return nil
}

func (s *Service) checkOwner(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	owner, err := s.requireContractor(ctx, domain.AggregateTransport, "contractorId", *id)
	if err != nil {
		return err
	}
	if !owner.IsCarrier() {
		return domain.NewValidationError(domain.FieldError{Field: "contractorId", Message: "must reference a carrier"})
	}
	return nil
}

func (s *Service) requireTransport(ctx context.Context, regNumber string) error {
	_, err := s.repos.Transport.Get(ctx, regNumber)
	if domain.IsNotFound(err) {
		return domain.NewReferentialError(domain.AggregateRouteLeg, "assignedTransportId", regNumber)
	}
	return err
}
