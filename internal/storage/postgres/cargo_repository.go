package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

const cargoColumns = `id, cargo_code, order_id, weight, volume, description, current_status`

type cargoRepository struct {
	db *sql.DB
}

// NewCargoRepository создаёт PostgreSQL-реализацию CargoRepository.
func NewCargoRepository(store *Store) domain.CargoRepository {
	return &cargoRepository{db: store.DB()}
}

func (r *cargoRepository) List(ctx context.Context, filter domain.CargoFilter) ([]domain.Cargo, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var w whereBuilder
	if filter.Status != "" {
		w.add("current_status = %s", string(filter.Status))
	}
	if filter.OrderID != "" {
		w.add("order_id = %s", filter.OrderID)
	}
	if filter.Search != "" {
		w.add("(cargo_code ILIKE %[1]s OR description ILIKE %[1]s)", likePattern(filter.Search))
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+cargoColumns+` FROM cargos`+w.String()+` ORDER BY cargo_code, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list cargos: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Cargo, 0)
	for rows.Next() {
		c, err := scanCargo(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cargos: %w", err)
	}
	return result, nil
}

func (r *cargoRepository) Get(ctx context.Context, id string) (domain.Cargo, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	c, err := scanCargo(r.db.QueryRowContext(ctx, `SELECT `+cargoColumns+` FROM cargos WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cargo{}, domain.NewNotFoundError("cargo", id)
	}
	return c, err
}

func (r *cargoRepository) Create(ctx context.Context, c domain.Cargo) (domain.Cargo, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if c.ID == "" {
		c.ID = newID()
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO cargos (id, cargo_code, order_id, weight, volume, description, current_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, c.ID, c.CargoID, c.OrderID, c.Weight, c.Volume, c.Description, string(c.CurrentStatus)); err != nil {
		return domain.Cargo{}, mapWriteError(err, "cargo")
	}
	return c, nil
}

func (r *cargoRepository) Update(ctx context.Context, id string, patch domain.CargoPatch) (domain.Cargo, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var updated domain.Cargo
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := scanCargo(tx.QueryRowContext(ctx, `SELECT `+cargoColumns+` FROM cargos WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("cargo", id)
		}
		if err != nil {
			return err
		}
		patch.Apply(&current)

		if _, err := tx.ExecContext(ctx, `
			UPDATE cargos
			SET order_id = $2, weight = $3, volume = $4, description = $5, current_status = $6
			WHERE id = $1
		`, id, current.OrderID, current.Weight, current.Volume, current.Description, string(current.CurrentStatus)); err != nil {
			return mapWriteError(err, "cargo")
		}
		updated = current
		return nil
	})
	if err != nil {
		return domain.Cargo{}, err
	}
	return updated, nil
}

// Delete удаляет груз; участки и события удаляются каскадом.
func (r *cargoRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM cargos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete cargo: %w", err)
	}
	return nil
}

func scanCargo(row scanner) (domain.Cargo, error) {
	var (
		c      domain.Cargo
		status string
	)
	if err := row.Scan(&c.ID, &c.CargoID, &c.OrderID, &c.Weight, &c.Volume, &c.Description, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cargo{}, err
		}
		return domain.Cargo{}, fmt.Errorf("scan cargo: %w", err)
	}
	c.CurrentStatus = domain.CargoStatus(status)
	return c, nil
}

var _ domain.CargoRepository = (*cargoRepository)(nil)
