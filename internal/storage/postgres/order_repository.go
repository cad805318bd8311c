package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

const orderColumns = `o.id, o.order_number, o.created_at, o.shipment_date, o.delivery_date, o.total_cost, o.status, o.sender_id, o.recipient_id`

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

// List возвращает заказы, новые первыми. Поиск идёт по номеру заказа
// и именам отправителя/получателя.
func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var w whereBuilder
	if filter.Status != "" {
		w.add("o.status = %s", string(filter.Status))
	}
	if filter.SenderID != nil {
		w.add("o.sender_id = %s", *filter.SenderID)
	}
	if filter.RecipientID != nil {
		w.add("o.recipient_id = %s", *filter.RecipientID)
	}
	if filter.DateFrom != nil {
		w.add("o.created_at >= %s", filter.DateFrom.UTC())
	}
	if filter.DateTo != nil {
		w.add("o.created_at <= %s", filter.DateTo.UTC())
	}
	if filter.Search != "" {
		w.add(`(o.order_number ILIKE %[1]s OR EXISTS (
			SELECT 1 FROM contractors c
			WHERE c.id IN (o.sender_id, o.recipient_id) AND c.name ILIKE %[1]s
		))`, likePattern(filter.Search))
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders o`+w.String()+` ORDER BY o.created_at DESC, o.id DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return result, nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.NewNotFoundError("order", id)
	}
	return o, err
}

func (r *orderRepository) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if o.ID == "" {
		o.ID = newID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, created_at, shipment_date, delivery_date,
			total_cost, status, sender_id, recipient_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		o.ID, o.OrderNumber, o.CreatedAt.UTC(), nullTime(o.ShipmentDate), nullTime(o.DeliveryDate),
		o.TotalCost, string(o.Status), o.SenderID, o.RecipientID,
	); err != nil {
		return domain.Order{}, mapWriteError(err, "order")
	}
	return o, nil
}

func (r *orderRepository) Update(ctx context.Context, id string, patch domain.OrderPatch) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var updated domain.Order
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := scanOrder(tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1 FOR UPDATE`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("order", id)
		}
		if err != nil {
			return err
		}
		patch.Apply(&current)

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET shipment_date = $2,
			    delivery_date = $3,
			    total_cost = $4,
			    status = $5,
			    sender_id = $6,
			    recipient_id = $7
			WHERE id = $1
		`,
			id, nullTime(current.ShipmentDate), nullTime(current.DeliveryDate), current.TotalCost,
			string(current.Status), current.SenderID, current.RecipientID,
		); err != nil {
			return mapWriteError(err, "order")
		}
		updated = current
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}

// Delete удаляет заказ; грузы, участки и события удаляются каскадом (ON DELETE CASCADE).
func (r *orderRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func scanOrder(row scanner) (domain.Order, error) {
	var (
		o                  domain.Order
		status             string
		shipment, delivery sql.NullTime
	)
	if err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CreatedAt, &shipment, &delivery,
		&o.TotalCost, &status, &o.SenderID, &o.RecipientID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("scan order row: %w", err)
	}
	o.CreatedAt = o.CreatedAt.UTC()
	o.ShipmentDate = timePtr(shipment)
	o.DeliveryDate = timePtr(delivery)
	o.Status = domain.OrderStatus(status)
	return o, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
