package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

type contractorRepository struct {
	s *Store
}

func (r *contractorRepository) List(_ context.Context, filter domain.ContractorFilter) ([]domain.Contractor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Contractor, 0, len(r.s.contractors))
	for _, c := range r.s.contractors {
		if filter.Match(c) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *contractorRepository) Get(_ context.Context, id int64) (domain.Contractor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.contractors[id]
	if !ok {
		return domain.Contractor{}, domain.NewNotFoundError("contractor", id)
	}
	return c, nil
}

// Create назначает следующий числовой id. Заданный вызывающим id сохраняется,
// если он свободен (нужно для загрузки демо-данных).
func (r *contractorRepository) Create(_ context.Context, c domain.Contractor) (domain.Contractor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c.ID == 0 {
		r.s.nextContractorID++
		for r.s.contractors[r.s.nextContractorID].ID != 0 {
			r.s.nextContractorID++
		}
		c.ID = r.s.nextContractorID
	} else {
		if _, exists := r.s.contractors[c.ID]; exists {
			return domain.Contractor{}, conflict("contractor %d already exists", c.ID)
		}
		if c.ID > r.s.nextContractorID {
			r.s.nextContractorID = c.ID
		}
	}

	now := r.s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	r.s.contractors[c.ID] = c
	return c, nil
}

func (r *contractorRepository) Update(_ context.Context, id int64, patch domain.ContractorPatch) (domain.Contractor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contractors[id]
	if !ok {
		return domain.Contractor{}, domain.NewNotFoundError("contractor", id)
	}
	patch.Apply(&c)
	c.UpdatedAt = r.s.now()
	r.s.contractors[id] = c
	return c, nil
}

// Delete не трогает ссылающиеся заказы и транспорт: это слабые ссылки.
func (r *contractorRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.contractors, id)
	return nil
}

var _ domain.ContractorRepository = (*contractorRepository)(nil)
