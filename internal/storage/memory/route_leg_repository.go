package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

type routeLegRepository struct {
	s *Store
}

// List возвращает участки, сгруппированные по грузу и упорядоченные по SequenceOrder.
func (r *routeLegRepository) List(_ context.Context, filter domain.RouteLegFilter) ([]domain.RouteLeg, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.RouteLeg, 0, len(r.s.legs))
	for _, l := range r.s.legs {
		if filter.Match(l) {
			result = append(result, l)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CargoID != result[j].CargoID {
			return result[i].CargoID < result[j].CargoID
		}
		if result[i].SequenceOrder != result[j].SequenceOrder {
			return result[i].SequenceOrder < result[j].SequenceOrder
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *routeLegRepository) Get(_ context.Context, id string) (domain.RouteLeg, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.legs[id]
	if !ok {
		return domain.RouteLeg{}, domain.NewNotFoundError("route leg", id)
	}
	return l, nil
}

// Create сохраняет участок; порядковый номер уникален в пределах груза.
func (r *routeLegRepository) Create(_ context.Context, l domain.RouteLeg) (domain.RouteLeg, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if l.ID == "" {
		l.ID = newID()
	}
	if _, exists := r.s.legs[l.ID]; exists {
		return domain.RouteLeg{}, conflict("route leg %q already exists", l.ID)
	}
	if r.sequenceTakenLocked(l) {
		return domain.RouteLeg{}, conflict("cargo %q already has leg #%d", l.CargoID, l.SequenceOrder)
	}
	r.s.legs[l.ID] = l
	return l, nil
}

func (r *routeLegRepository) Update(_ context.Context, id string, patch domain.RouteLegPatch) (domain.RouteLeg, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.legs[id]
	if !ok {
		return domain.RouteLeg{}, domain.NewNotFoundError("route leg", id)
	}
	patch.Apply(&l)
	if r.sequenceTakenLocked(l) {
		return domain.RouteLeg{}, conflict("cargo %q already has leg #%d", l.CargoID, l.SequenceOrder)
	}
	r.s.legs[id] = l
	return l, nil
}

// Delete удаляет участок вместе с его событиями.
func (r *routeLegRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.deleteRouteLegLocked(id)
	return nil
}

func (r *routeLegRepository) sequenceTakenLocked(leg domain.RouteLeg) bool {
	for id, other := range r.s.legs {
		if id != leg.ID && other.CargoID == leg.CargoID && other.SequenceOrder == leg.SequenceOrder {
			return true
		}
	}
	return false
}

var _ domain.RouteLegRepository = (*routeLegRepository)(nil)
