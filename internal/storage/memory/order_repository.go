package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

type orderRepository struct {
	s *Store
}

// List возвращает заказы, новые первыми.
func (r *orderRepository) List(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		if filter.Match(o, r.s.contractorNameLocked) {
			result = append(result, o)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *orderRepository) Get(_ context.Context, id string) (domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return domain.Order{}, domain.NewNotFoundError("order", id)
	}
	return o, nil
}

// Create сохраняет заказ; номер заказа уникален.
func (r *orderRepository) Create(_ context.Context, o domain.Order) (domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if o.ID == "" {
		o.ID = newID()
	}
	if _, exists := r.s.orders[o.ID]; exists {
		return domain.Order{}, conflict("order %q already exists", o.ID)
	}
	if r.numberTakenLocked(o.OrderNumber, "") {
		return domain.Order{}, conflict("order number %q already exists", o.OrderNumber)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.s.now()
	}
	r.s.orders[o.ID] = o
	return o, nil
}

func (r *orderRepository) Update(_ context.Context, id string, patch domain.OrderPatch) (domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return domain.Order{}, domain.NewNotFoundError("order", id)
	}
	patch.Apply(&o)
	r.s.orders[id] = o
	return o, nil
}

// Delete удаляет заказ вместе с грузами, их участками и событиями.
func (r *orderRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.deleteOrderLocked(id)
	return nil
}

func (r *orderRepository) numberTakenLocked(number, exceptID string) bool {
	for id, o := range r.s.orders {
		if id != exceptID && o.OrderNumber == number {
			return true
		}
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
