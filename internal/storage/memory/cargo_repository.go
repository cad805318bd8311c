package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

type cargoRepository struct {
	s *Store
}

func (r *cargoRepository) List(_ context.Context, filter domain.CargoFilter) ([]domain.Cargo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Cargo, 0, len(r.s.cargos))
	for _, c := range r.s.cargos {
		if filter.Match(c) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CargoID != result[j].CargoID {
			return result[i].CargoID < result[j].CargoID
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *cargoRepository) Get(_ context.Context, id string) (domain.Cargo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.cargos[id]
	if !ok {
		return domain.Cargo{}, domain.NewNotFoundError("cargo", id)
	}
	return c, nil
}

func (r *cargoRepository) Create(_ context.Context, c domain.Cargo) (domain.Cargo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c.ID == "" {
		c.ID = newID()
	}
	if _, exists := r.s.cargos[c.ID]; exists {
		return domain.Cargo{}, conflict("cargo %q already exists", c.ID)
	}
	r.s.cargos[c.ID] = c
	return c, nil
}

func (r *cargoRepository) Update(_ context.Context, id string, patch domain.CargoPatch) (domain.Cargo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.cargos[id]
	if !ok {
		return domain.Cargo{}, domain.NewNotFoundError("cargo", id)
	}
	patch.Apply(&c)
	r.s.cargos[id] = c
	return c, nil
}

// Delete удаляет груз вместе с участками маршрута и их событиями.
func (r *cargoRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.deleteCargoLocked(id)
	return nil
}

var _ domain.CargoRepository = (*cargoRepository)(nil)
