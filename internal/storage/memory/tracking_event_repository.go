package memory

import (
	"context"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// trackingEventRepository: журнал событий; записи только добавляются и удаляются.
type trackingEventRepository struct {
	s *Store
}

// List возвращает события в хронологическом порядке.
func (r *trackingEventRepository) List(_ context.Context, filter domain.TrackingEventFilter) ([]domain.TrackingEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.TrackingEvent, 0, len(r.s.events))
	for _, e := range r.s.events {
		if filter.Match(e) {
			result = append(result, e)
		}
	}
	domain.SortEvents(result)
	return result, nil
}

func (r *trackingEventRepository) Get(_ context.Context, id string) (domain.TrackingEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.events[id]
	if !ok {
		return domain.TrackingEvent{}, domain.NewNotFoundError("tracking event", id)
	}
	return e, nil
}

func (r *trackingEventRepository) Create(_ context.Context, e domain.TrackingEvent) (domain.TrackingEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if e.ID == "" {
		e.ID = newID()
	}
	if _, exists := r.s.events[e.ID]; exists {
		return domain.TrackingEvent{}, conflict("tracking event %q already exists", e.ID)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.s.now()
	}
	r.s.events[e.ID] = e
	return e, nil
}

func (r *trackingEventRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.events, id)
	return nil
}

var _ domain.TrackingEventRepository = (*trackingEventRepository)(nil)
