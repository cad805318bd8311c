package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

const contractorColumns = `id, name, role, contact, inn, legal_address, created_at, updated_at`

type contractorRepository struct {
	db *sql.DB
}

// NewContractorRepository создаёт PostgreSQL-реализацию ContractorRepository.
func NewContractorRepository(store *Store) domain.ContractorRepository {
	return &contractorRepository{db: store.DB()}
}

func (r *contractorRepository) List(ctx context.Context, filter domain.ContractorFilter) ([]domain.Contractor, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var w whereBuilder
	if filter.Role != "" {
		w.add("role = %s", string(filter.Role))
	}
	if filter.Search != "" {
		w.add("(name ILIKE %[1]s OR contact ILIKE %[1]s)", likePattern(filter.Search))
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+contractorColumns+` FROM contractors`+w.String()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list contractors: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Contractor, 0)
	for rows.Next() {
		c, err := scanContractor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contractors: %w", err)
	}
	return result, nil
}

func (r *contractorRepository) Get(ctx context.Context, id int64) (domain.Contractor, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return getContractor(r.db.QueryRowContext(ctx, `SELECT `+contractorColumns+` FROM contractors WHERE id = $1`, id), id)
}

// Create назначает id из последовательности. Явно заданный id сохраняется,
// последовательность подтягивается, чтобы следующие id не пересеклись.
func (r *contractorRepository) Create(ctx context.Context, c domain.Contractor) (domain.Contractor, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if c.ID == 0 {
			return tx.QueryRowContext(ctx, `
				INSERT INTO contractors (name, role, contact, inn, legal_address, created_at, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7)
				RETURNING id
			`, c.Name, string(c.Role), c.Contact, c.INN, c.LegalAddress, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO contractors (id, name, role, contact, inn, legal_address, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, c.ID, c.Name, string(c.Role), c.Contact, c.INN, c.LegalAddress, c.CreatedAt, c.UpdatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			SELECT setval(pg_get_serial_sequence('contractors', 'id'), (SELECT MAX(id) FROM contractors))
		`)
		return err
	})
	if err != nil {
		return domain.Contractor{}, mapWriteError(err, "contractor")
	}
	return c, nil
}

func (r *contractorRepository) Update(ctx context.Context, id int64, patch domain.ContractorPatch) (domain.Contractor, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var updated domain.Contractor
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := getContractor(tx.QueryRowContext(ctx, `SELECT `+contractorColumns+` FROM contractors WHERE id = $1 FOR UPDATE`, id), id)
		if err != nil {
			return err
		}
		patch.Apply(&current)
		current.UpdatedAt = time.Now().UTC()

		if _, err := tx.ExecContext(ctx, `
			UPDATE contractors
			SET name = $2, contact = $3, inn = $4, legal_address = $5, updated_at = $6
			WHERE id = $1
		`, id, current.Name, current.Contact, current.INN, current.LegalAddress, current.UpdatedAt); err != nil {
			return mapWriteError(err, "contractor")
		}
		updated = current
		return nil
	})
	if err != nil {
		return domain.Contractor{}, err
	}
	return updated, nil
}

func (r *contractorRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM contractors WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete contractor: %w", err)
	}
	return nil
}

func getContractor(row *sql.Row, id int64) (domain.Contractor, error) {
	c, err := scanContractor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Contractor{}, domain.NewNotFoundError("contractor", id)
	}
	return c, err
}

func scanContractor(row scanner) (domain.Contractor, error) {
	var (
		c    domain.Contractor
		role string
	)
	if err := row.Scan(&c.ID, &c.Name, &role, &c.Contact, &c.INN, &c.LegalAddress, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Contractor{}, err
		}
		return domain.Contractor{}, fmt.Errorf("scan contractor: %w", err)
	}
	c.Role = domain.ContractorRole(role)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

var _ domain.ContractorRepository = (*contractorRepository)(nil)
