package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

const routeLegColumns = `id, cargo_id, start_warehouse_id, end_warehouse_id, sequence_order, planned_start, assigned_transport_id, status`

type routeLegRepository struct {
	db *sql.DB
}

// NewRouteLegRepository создаёт PostgreSQL-реализацию RouteLegRepository.
func NewRouteLegRepository(store *Store) domain.RouteLegRepository {
	return &routeLegRepository{db: store.DB()}
}

func (r *routeLegRepository) List(ctx context.Context, filter domain.RouteLegFilter) ([]domain.RouteLeg, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var w whereBuilder
	if filter.CargoID != "" {
		w.add("cargo_id = %s", filter.CargoID)
	}
	if filter.Status != "" {
		w.add("status = %s", string(filter.Status))
	}
	if filter.AssignedTransportID != "" {
		w.add("assigned_transport_id = %s", filter.AssignedTransportID)
	}
	if filter.WarehouseID != "" {
		w.add("(start_warehouse_id = %[1]s OR end_warehouse_id = %[1]s)", filter.WarehouseID)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+routeLegColumns+` FROM route_legs`+w.String()+` ORDER BY cargo_id, sequence_order, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list route legs: %w", err)
	}
	defer rows.Close()

	result := make([]domain.RouteLeg, 0)
	for rows.Next() {
		l, err := scanRouteLeg(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate route legs: %w", err)
	}
	return result, nil
}

func (r *routeLegRepository) Get(ctx context.Context, id string) (domain.RouteLeg, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	l, err := scanRouteLeg(r.db.QueryRowContext(ctx, `SELECT `+routeLegColumns+` FROM route_legs WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RouteLeg{}, domain.NewNotFoundError("route leg", id)
	}
	return l, err
}

func (r *routeLegRepository) Create(ctx context.Context, l domain.RouteLeg) (domain.RouteLeg, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if l.ID == "" {
		l.ID = newID()
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO route_legs (
			id, cargo_id, start_warehouse_id, end_warehouse_id, sequence_order,
			planned_start, assigned_transport_id, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		l.ID, l.CargoID, l.StartWarehouseID, l.EndWarehouseID, l.SequenceOrder,
		nullTime(l.PlannedStart), nullString(l.AssignedTransportID), string(l.Status),
	); err != nil {
		return domain.RouteLeg{}, mapWriteError(err, "route leg")
	}
	return l, nil
}

func (r *routeLegRepository) Update(ctx context.Context, id string, patch domain.RouteLegPatch) (domain.RouteLeg, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var updated domain.RouteLeg
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := scanRouteLeg(tx.QueryRowContext(ctx, `SELECT `+routeLegColumns+` FROM route_legs WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("route leg", id)
		}
		if err != nil {
			return err
		}
		patch.Apply(&current)

		if _, err := tx.ExecContext(ctx, `
			UPDATE route_legs
			SET cargo_id = $2,
			    start_warehouse_id = $3,
			    end_warehouse_id = $4,
			    sequence_order = $5,
			    planned_start = $6,
			    assigned_transport_id = $7,
			    status = $8
			WHERE id = $1
		`,
			id, current.CargoID, current.StartWarehouseID, current.EndWarehouseID, current.SequenceOrder,
			nullTime(current.PlannedStart), nullString(current.AssignedTransportID), string(current.Status),
		); err != nil {
			return mapWriteError(err, "route leg")
		}
		updated = current
		return nil
	})
	if err != nil {
		return domain.RouteLeg{}, err
	}
	return updated, nil
}

// Delete удаляет участок; события удаляются каскадом.
func (r *routeLegRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM route_legs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete route leg: %w", err)
	}
	return nil
}

func scanRouteLeg(row scanner) (domain.RouteLeg, error) {
	var (
		l         domain.RouteLeg
		planned   sql.NullTime
		transport sql.NullString
		status    string
	)
	if err := row.Scan(
		&l.ID, &l.CargoID, &l.StartWarehouseID, &l.EndWarehouseID, &l.SequenceOrder,
		&planned, &transport, &status,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RouteLeg{}, err
		}
		return domain.RouteLeg{}, fmt.Errorf("scan route leg: %w", err)
	}
	l.PlannedStart = timePtr(planned)
	l.AssignedTransportID = stringPtr(transport)
	l.Status = domain.RouteLegStatus(status)
	return l, nil
}

var _ domain.RouteLegRepository = (*routeLegRepository)(nil)
