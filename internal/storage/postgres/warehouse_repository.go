package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

const warehouseColumns = `id, name, address, type, contact_person_id, capacity_m3`

type warehouseRepository struct {
	db *sql.DB
}

// NewWarehouseRepository создаёт PostgreSQL-реализацию WarehouseRepository.
func NewWarehouseRepository(store *Store) domain.WarehouseRepository {
	return &warehouseRepository{db: store.DB()}
}

func (r *warehouseRepository) List(ctx context.Context, filter domain.WarehouseFilter) ([]domain.Warehouse, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var w whereBuilder
	if filter.Type != "" {
		w.add("type = %s", string(filter.Type))
	}
	if filter.Search != "" {
		w.add("(name ILIKE %[1]s OR address ILIKE %[1]s)", likePattern(filter.Search))
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+warehouseColumns+` FROM warehouses`+w.String()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Warehouse, 0)
	for rows.Next() {
		wh, err := scanWarehouse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, wh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate warehouses: %w", err)
	}
	return result, nil
}

func (r *warehouseRepository) Get(ctx context.Context, id string) (domain.Warehouse, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	wh, err := scanWarehouse(r.db.QueryRowContext(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Warehouse{}, domain.NewNotFoundError("warehouse", id)
	}
	return wh, err
}

func (r *warehouseRepository) Create(ctx context.Context, wh domain.Warehouse) (domain.Warehouse, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if wh.ID == "" {
		wh.ID = newID()
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO warehouses (id, name, address, type, contact_person_id, capacity_m3)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, wh.ID, wh.Name, wh.Address, string(wh.Type), nullInt64(wh.ContactPersonID), wh.CapacityM3); err != nil {
		return domain.Warehouse{}, mapWriteError(err, "warehouse")
	}
	return wh, nil
}

func (r *warehouseRepository) Update(ctx context.Context, id string, patch domain.WarehousePatch) (domain.Warehouse, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var updated domain.Warehouse
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := scanWarehouse(tx.QueryRowContext(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("warehouse", id)
		}
		if err != nil {
			return err
		}
		patch.Apply(&current)

		if _, err := tx.ExecContext(ctx, `
			UPDATE warehouses
			SET name = $2, address = $3, type = $4, contact_person_id = $5, capacity_m3 = $6
			WHERE id = $1
		`, id, current.Name, current.Address, string(current.Type), nullInt64(current.ContactPersonID), current.CapacityM3); err != nil {
			return mapWriteError(err, "warehouse")
		}
		updated = current
		return nil
	})
	if err != nil {
		return domain.Warehouse{}, err
	}
	return updated, nil
}

func (r *warehouseRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM warehouses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete warehouse: %w", err)
	}
	return nil
}

func scanWarehouse(row scanner) (domain.Warehouse, error) {
	var (
		wh      domain.Warehouse
		whType  string
		contact sql.NullInt64
	)
	if err := row.Scan(&wh.ID, &wh.Name, &wh.Address, &whType, &contact, &wh.CapacityM3); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Warehouse{}, err
		}
		return domain.Warehouse{}, fmt.Errorf("scan warehouse: %w", err)
	}
	wh.Type = domain.WarehouseType(whType)
	wh.ContactPersonID = int64Ptr(contact)
	return wh, nil
}

var _ domain.WarehouseRepository = (*warehouseRepository)(nil)
