package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

type transportRepository struct {
	s *Store
}

func (r *transportRepository) List(_ context.Context, filter domain.TransportFilter) ([]domain.Transport, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Transport, 0, len(r.s.transport))
	for _, t := range r.s.transport {
		if filter.Match(t) {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RegNumber < result[j].RegNumber })
	return result, nil
}

func (r *transportRepository) Get(_ context.Context, regNumber string) (domain.Transport, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.transport[regNumber]
	if !ok {
		return domain.Transport{}, domain.NewNotFoundError("transport", regNumber)
	}
	return t, nil
}

// Create сохраняет госномер вызывающего как идентификатор.
func (r *transportRepository) Create(_ context.Context, t domain.Transport) (domain.Transport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.transport[t.RegNumber]; exists {
		return domain.Transport{}, conflict("transport %q already exists", t.RegNumber)
	}
	r.s.transport[t.RegNumber] = t
	return t, nil
}

func (r *transportRepository) Update(_ context.Context, regNumber string, patch domain.TransportPatch) (domain.Transport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.transport[regNumber]
	if !ok {
		return domain.Transport{}, domain.NewNotFoundError("transport", regNumber)
	}
	patch.Apply(&t)
	r.s.transport[regNumber] = t
	return t, nil
}

func (r *transportRepository) Delete(_ context.Context, regNumber string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.transport, regNumber)
	return nil
}

var _ domain.TransportRepository = (*transportRepository)(nil)
