package logistics

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// cargoStatusByEvent: статус груза после события на его участке.
var cargoStatusByEvent = map[domain.EventType]domain.CargoStatus{
	domain.EventTypeDeparted:  domain.CargoStatusInTransit,
	domain.EventTypeArrived:   domain.CargoStatusAtWarehouse,
	domain.EventTypeDelivered: domain.CargoStatusDelivered,
	domain.EventTypeDelayed:   domain.CargoStatusDelayed,
}

// ListEvents возвращает события по фильтру в хронологическом порядке.
func (s *Service) ListEvents(ctx context.Context, filter domain.TrackingEventFilter) ([]domain.TrackingEvent, error) {
	return s.repos.Events.List(ctx, filter)
}

// GetEvent возвращает событие по id.
func (s *Service) GetEvent(ctx context.Context, id string) (domain.TrackingEvent, error) {
	return s.repos.Events.Get(ctx, id)
}

// AppendEvent дописывает событие в журнал участка и пересчитывает статус
// груза. Задержка без причины отклоняется валидацией.
func (s *Service) AppendEvent(ctx context.Context, e domain.TrackingEvent) (created domain.TrackingEvent, err error) {
	defer func() { s.observe(domain.AggregateTrackingEvent, "create", created.ID, err) }()

	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	if err = e.Validate(); err != nil {
		return domain.TrackingEvent{}, err
	}

	leg, err := s.repos.RouteLegs.Get(ctx, e.RouteLegID)
	if domain.IsNotFound(err) {
		return domain.TrackingEvent{}, domain.NewReferentialError(domain.AggregateTrackingEvent, "routeLegId", e.RouteLegID)
	}
	if err != nil {
		return domain.TrackingEvent{}, err
	}

	if created, err = s.repos.Events.Create(ctx, e); err != nil {
		return domain.TrackingEvent{}, err
	}
	s.metrics.RecordTrackingEvent(string(created.EventType))
	s.emit(ctx, domain.AggregateTrackingEvent, created.ID, EventAppended, created)

	s.advanceCargo(ctx, leg.CargoID, created)
	return created, nil
}

// DeleteEvent удаляет событие.
func (s *Service) DeleteEvent(ctx context.Context, id string) (err error) {
	defer func() { s.observe(domain.AggregateTrackingEvent, "delete", id, err) }()

	removed, err := removeExisting(ctx, id, s.repos.Events.Get, s.repos.Events.Delete)
	if err != nil || !removed {
		return err
	}
	s.emit(ctx, domain.AggregateTrackingEvent, id, EventDeleted, map[string]string{"id": id})
	return nil
}

// advanceCargo выставляет грузу статус самого позднего по времени события
// его участков. Событие уже записано, поэтому ошибка только логируется.
func (s *Service) advanceCargo(ctx context.Context, cargoID string, e domain.TrackingEvent) {
	if _, ok := cargoStatusByEvent[e.EventType]; !ok {
		return
	}
	entry := s.logger.WithField("cargo_id", cargoID)

	latest, err := s.latestStatusEvent(ctx, cargoID, e)
	if err != nil {
		entry.WithError(err).Error("load cargo tracking history failed")
		return
	}
	status := cargoStatusByEvent[latest.EventType]

	cargo, err := s.repos.Cargos.Get(ctx, cargoID)
	if err != nil {
		entry.WithError(err).Warn("cargo for tracking event not found")
		return
	}
	if cargo.CurrentStatus == status {
		if latest.ID != e.ID {
			entry.WithField("event_id", e.ID).Debug("late tracking event does not change cargo status")
		}
		return
	}

	updated, err := s.repos.Cargos.Update(ctx, cargoID, domain.CargoPatch{CurrentStatus: &status})
	if err != nil {
		entry.WithError(err).Error("update cargo status failed")
		return
	}
	s.emit(ctx, domain.AggregateCargo, cargoID, EventStatusChanged, statusChange{From: string(cargo.CurrentStatus), To: string(updated.CurrentStatus)})
	entry.WithFields(log.Fields{
		"event":  latest.EventType,
		"status": updated.CurrentStatus,
	}).Info("cargo status advanced")
}

// latestStatusEvent ищет последнее по времени событие, меняющее статус
// груза. При равном времени побеждает только что записанное appended.
func (s *Service) latestStatusEvent(ctx context.Context, cargoID string, appended domain.TrackingEvent) (domain.TrackingEvent, error) {
	legs, err := s.repos.RouteLegs.List(ctx, domain.RouteLegFilter{CargoID: cargoID})
	if err != nil {
		return domain.TrackingEvent{}, fmt.Errorf("list legs of cargo %s: %w", cargoID, err)
	}

	var history []domain.TrackingEvent
	for _, leg := range legs {
		events, err := s.repos.Events.List(ctx, domain.TrackingEventFilter{RouteLegID: leg.ID})
		if err != nil {
			return domain.TrackingEvent{}, fmt.Errorf("list events of leg %s: %w", leg.ID, err)
		}
		for _, ev := range events {
			if _, ok := cargoStatusByEvent[ev.EventType]; ok && ev.ID != appended.ID {
				history = append(history, ev)
			}
		}
	}
	domain.SortEvents(history)

	if n := len(history); n > 0 && history[n-1].Timestamp.After(appended.Timestamp) {
		return history[n-1], nil
	}
	return appended, nil
}
