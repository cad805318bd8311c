package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

const transportColumns = `reg_number, type, capacity, lat, lng, contractor_id`

type transportRepository struct {
	db *sql.DB
}

// NewTransportRepository создаёт PostgreSQL-реализацию TransportRepository.
func NewTransportRepository(store *Store) domain.TransportRepository {
	return &transportRepository{db: store.DB()}
}

func (r *transportRepository) List(ctx context.Context, filter domain.TransportFilter) ([]domain.Transport, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var w whereBuilder
	if filter.Type != "" {
		w.add("type = %s", string(filter.Type))
	}
	if filter.ContractorID != nil {
		w.add("contractor_id = %s", *filter.ContractorID)
	}
	if filter.Search != "" {
		w.add("reg_number ILIKE %s", likePattern(filter.Search))
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+transportColumns+` FROM transport`+w.String()+` ORDER BY reg_number`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list transport: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Transport, 0)
	for rows.Next() {
		t, err := scanTransport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transport: %w", err)
	}
	return result, nil
}

func (r *transportRepository) Get(ctx context.Context, regNumber string) (domain.Transport, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	t, err := scanTransport(r.db.QueryRowContext(ctx, `SELECT `+transportColumns+` FROM transport WHERE reg_number = $1`, regNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Transport{}, domain.NewNotFoundError("transport", regNumber)
	}
	return t, err
}

func (r *transportRepository) Create(ctx context.Context, t domain.Transport) (domain.Transport, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	lat, lng := nullCoordinates(t.Coordinates)
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO transport (reg_number, type, capacity, lat, lng, contractor_id)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, t.RegNumber, string(t.Type), t.Capacity, lat, lng, nullInt64(t.ContractorID)); err != nil {
		return domain.Transport{}, mapWriteError(err, "transport")
	}
	return t, nil
}

func (r *transportRepository) Update(ctx context.Context, regNumber string, patch domain.TransportPatch) (domain.Transport, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var updated domain.Transport
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := scanTransport(tx.QueryRowContext(ctx, `SELECT `+transportColumns+` FROM transport WHERE reg_number = $1 FOR UPDATE`, regNumber))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("transport", regNumber)
		}
		if err != nil {
			return err
		}
		patch.Apply(&current)

		lat, lng := nullCoordinates(current.Coordinates)
		if _, err := tx.ExecContext(ctx, `
			UPDATE transport
			SET type = $2, capacity = $3, lat = $4, lng = $5, contractor_id = $6
			WHERE reg_number = $1
		`, regNumber, string(current.Type), current.Capacity, lat, lng, nullInt64(current.ContractorID)); err != nil {
			return mapWriteError(err, "transport")
		}
		updated = current
		return nil
	})
	if err != nil {
		return domain.Transport{}, err
	}
	return updated, nil
}

func (r *transportRepository) Delete(ctx context.Context, regNumber string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM transport WHERE reg_number = $1`, regNumber); err != nil {
		return fmt.Errorf("delete transport: %w", err)
	}
	return nil
}

func scanTransport(row scanner) (domain.Transport, error) {
	var (
		t        domain.Transport
		tType    string
		lat, lng sql.NullFloat64
		owner    sql.NullInt64
	)
	if err := row.Scan(&t.RegNumber, &tType, &t.Capacity, &lat, &lng, &owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transport{}, err
		}
		return domain.Transport{}, fmt.Errorf("scan transport: %w", err)
	}
	t.Type = domain.TransportType(tType)
	t.Coordinates = coordinatesPtr(lat, lng)
	t.ContractorID = int64Ptr(owner)
	return t, nil
}

var _ domain.TransportRepository = (*transportRepository)(nil)
