package logistics

import (
	"context"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// ListOrders возвращает заказы по фильтру.
func (s *Service) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	return s.repos.Orders.List(ctx, filter)
}

// GetOrder возвращает заказ по id.
func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.repos.Orders.Get(ctx, id)
}

// CreateOrder создаёт заказ. Без статуса заказ создаётся в pending.
func (s *Service) CreateOrder(ctx context.Context, o domain.Order) (created domain.Order, err error) {
	defer func() { s.observe(domain.AggregateOrder, "create", created.ID, err) }()

	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}
	if err = o.Validate(); err != nil {
		return domain.Order{}, err
	}
	if err = s.checkParticipants(ctx, o.SenderID, o.RecipientID); err != nil {
		return domain.Order{}, err
	}
	if created, err = s.repos.Orders.Create(ctx, o); err != nil {
		return domain.Order{}, err
	}
	s.emit(ctx, domain.AggregateOrder, created.ID, EventCreated, created)
	return created, nil
}

// UpdateOrder частично обновляет заказ. Смена статуса публикуется отдельным событием.
func (s *Service) UpdateOrder(ctx context.Context, id string, patch domain.OrderPatch) (updated domain.Order, err error) {
	defer func() { s.observe(domain.AggregateOrder, "update", id, err) }()

	current, err := s.repos.Orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	previous := current.Status
	patch.Apply(&current)
	if err = current.Validate(); err != nil {
		return domain.Order{}, err
	}
	if patch.SenderID != nil || patch.RecipientID != nil {
		if err = s.checkParticipants(ctx, current.SenderID, current.RecipientID); err != nil {
			return domain.Order{}, err
		}
	}
	if updated, err = s.repos.Orders.Update(ctx, id, patch); err != nil {
		return domain.Order{}, err
	}

	s.emit(ctx, domain.AggregateOrder, id, EventUpdated, updated)
	if updated.Status != previous {
		s.emit(ctx, domain.AggregateOrder, id, EventStatusChanged, statusChange{From: string(previous), To: string(updated.Status)})
	}
	return updated, nil
}

// DeleteOrder удаляет заказ вместе с грузами, участками и событиями.
func (s *Service) DeleteOrder(ctx context.Context, id string) (err error) {
	defer func() { s.observe(domain.AggregateOrder, "delete", id, err) }()

	removed, err := removeExisting(ctx, id, s.repos.Orders.Get, s.repos.Orders.Delete)
	if err != nil || !removed {
		return err
	}
	s.emit(ctx, domain.AggregateOrder, id, EventDeleted, map[string]string{"id": id})
	return nil
}

func (s *Service) checkParticipants(ctx context.Context, senderID, recipientID int64) error {
	if _, err := s.requireContractor(ctx, domain.AggregateOrder, "senderId", senderID); err != nil {
		return err
	}
	_, err := s.requireContractor(ctx, domain.AggregateOrder, "recipientId", recipientID)
	return err
}

func (s *Service) requireOrder(ctx context.Context, id string) error {
	_, err := s.repos.Orders.Get(ctx, id)
	if domain.IsNotFound(err) {
		return domain.NewReferentialError(domain.AggregateCargo, "orderId", id)
	}
	return err
}

type statusChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}
