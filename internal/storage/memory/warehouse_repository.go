package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

type warehouseRepository struct {
	s *Store
}

func (r *warehouseRepository) List(_ context.Context, filter domain.WarehouseFilter) ([]domain.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Warehouse, 0, len(r.s.warehouses))
	for _, w := range r.s.warehouses {
		if filter.Match(w) {
			result = append(result, w)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *warehouseRepository) Get(_ context.Context, id string) (domain.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	w, ok := r.s.warehouses[id]
	if !ok {
		return domain.Warehouse{}, domain.NewNotFoundError("warehouse", id)
	}
	return w, nil
}

func (r *warehouseRepository) Create(_ context.Context, w domain.Warehouse) (domain.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if w.ID == "" {
		w.ID = newID()
	}
	if _, exists := r.s.warehouses[w.ID]; exists {
		return domain.Warehouse{}, conflict("warehouse %q already exists", w.ID)
	}
	r.s.warehouses[w.ID] = w
	return w, nil
}

func (r *warehouseRepository) Update(_ context.Context, id string, patch domain.WarehousePatch) (domain.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	w, ok := r.s.warehouses[id]
	if !ok {
		return domain.Warehouse{}, domain.NewNotFoundError("warehouse", id)
	}
	patch.Apply(&w)
	r.s.warehouses[id] = w
	return w, nil
}

func (r *warehouseRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.warehouses, id)
	return nil
}

var _ domain.WarehouseRepository = (*warehouseRepository)(nil)
