package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

const trackingEventColumns = `id, route_leg_id, event_type, occurred_at, lat, lng, description, delay_reason`

type trackingEventRepository struct {
	db *sql.DB
}

// NewTrackingEventRepository создаёт PostgreSQL-реализацию журнала событий.
func NewTrackingEventRepository(store *Store) domain.TrackingEventRepository {
	return &trackingEventRepository{db: store.DB()}
}

func (r *trackingEventRepository) List(ctx context.Context, filter domain.TrackingEventFilter) ([]domain.TrackingEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var w whereBuilder
	if filter.RouteLegID != "" {
		w.add("route_leg_id = %s", filter.RouteLegID)
	}
	if filter.EventType != "" {
		w.add("event_type = %s", string(filter.EventType))
	}
	if filter.From != nil {
		w.add("occurred_at >= %s", filter.From.UTC())
	}
	if filter.To != nil {
		w.add("occurred_at <= %s", filter.To.UTC())
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+trackingEventColumns+` FROM tracking_events`+w.String()+` ORDER BY occurred_at, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list tracking events: %w", err)
	}
	defer rows.Close()

	result := make([]domain.TrackingEvent, 0)
	for rows.Next() {
		e, err := scanTrackingEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracking events: %w", err)
	}
	return result, nil
}

func (r *trackingEventRepository) Get(ctx context.Context, id string) (domain.TrackingEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	e, err := scanTrackingEvent(r.db.QueryRowContext(ctx, `SELECT `+trackingEventColumns+` FROM tracking_events WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TrackingEvent{}, domain.NewNotFoundError("tracking event", id)
	}
	return e, err
}

func (r *trackingEventRepository) Create(ctx context.Context, e domain.TrackingEvent) (domain.TrackingEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if e.ID == "" {
		e.ID = newID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	lat, lng := nullCoordinates(e.Coordinates)
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO tracking_events (id, route_leg_id, event_type, occurred_at, lat, lng, description, delay_reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, e.ID, e.RouteLegID, string(e.EventType), e.Timestamp.UTC(), lat, lng, e.Description, string(e.DelayReason)); err != nil {
		return domain.TrackingEvent{}, mapWriteError(err, "tracking event")
	}
	return e, nil
}

func (r *trackingEventRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM tracking_events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete tracking event: %w", err)
	}
	return nil
}

func scanTrackingEvent(row scanner) (domain.TrackingEvent, error) {
	var (
		e           domain.TrackingEvent
		eventType   string
		delayReason string
		lat, lng    sql.NullFloat64
	)
	if err := row.Scan(&e.ID, &e.RouteLegID, &eventType, &e.Timestamp, &lat, &lng, &e.Description, &delayReason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TrackingEvent{}, err
		}
		return domain.TrackingEvent{}, fmt.Errorf("scan tracking event: %w", err)
	}
	e.EventType = domain.EventType(eventType)
	e.Timestamp = e.Timestamp.UTC()
	e.Coordinates = coordinatesPtr(lat, lng)
	e.DelayReason = domain.DelayReason(delayReason)
	return e, nil
}

var _ domain.TrackingEventRepository = (*trackingEventRepository)(nil)
