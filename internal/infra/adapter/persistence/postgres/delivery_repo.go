package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"commerce-bridge/internal/domain/entity"
	"commerce-bridge/internal/repository"
)

type DeliveryRepo struct{ q querier }

func NewDeliveryRepo(q querier) repository.DeliveryRepository {
	return &DeliveryRepo{q: q}
}

const deliveryColumns = `id, name, origin, delivery_type, state, storefront_order_id, webhook_sent, date_done`

func scanDelivery(row interface{ Scan(...any) error }) (*entity.Delivery, error) {
	var d entity.Delivery
	var origin, storefrontID sql.NullString
	var dateDone sql.NullTime
	if err := row.Scan(
		&d.ID, &d.Name, &origin, &d.Type, &d.State,
		&storefrontID, &d.WebhookSent, &dateDone,
	); err != nil {
		return nil, err
	}
	d.Origin = origin.String
	d.StorefrontOrderID = storefrontID.String
	if dateDone.Valid {
		t := dateDone.Time
		d.DateDone = &t
	}
	return &d, nil
}

func (repo *DeliveryRepo) Get(ctx context.Context, id int64) (*entity.Delivery, error) {
	const query = `
SELECT ` + deliveryColumns + `
FROM deliveries
WHERE id = $1
LIMIT 1`
	d, err := scanDelivery(repo.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("delivery %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	if err := repo.loadMoves(ctx, d); err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return d, nil
}

func (repo *DeliveryRepo) ListByOrigin(ctx context.Context, origin string, states []entity.DeliveryState) ([]*entity.Delivery, error) {
	query := `
SELECT ` + deliveryColumns + `
FROM deliveries
WHERE origin = $1`
	args := []any{origin}
	if len(states) > 0 {
		stateStrs := make([]string, len(states))
		for i, s := range states {
			stateStrs[i] = string(s)
		}
		query += ` AND state = ANY($2)`
		args = append(args, stateStrs)
	}
	query += ` ORDER BY id ASC`

	return repo.list(ctx, "ListByOrigin", query, args...)
}

func (repo *DeliveryRepo) ListByStorefrontOrder(ctx context.Context, storefrontID string) ([]*entity.Delivery, error) {
	const query = `
SELECT ` + deliveryColumns + `
FROM deliveries
WHERE storefront_order_id = $1
  AND delivery_type = 'outgoing'
ORDER BY id ASC`
	return repo.list(ctx, "ListByStorefrontOrder", query, storefrontID)
}

func (repo *DeliveryRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Delivery, error) {
	rows, err := repo.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	deliveries := make([]*entity.Delivery, 0, 10)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, d := range deliveries {
		if err := repo.loadMoves(ctx, d); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return deliveries, nil
}

func (repo *DeliveryRepo) loadMoves(ctx context.Context, d *entity.Delivery) error {
	const query = `
SELECT id, product_id, state, demand, done_quantity, COALESCE(return_of_move_id, 0)
FROM stock_moves
WHERE delivery_id = $1
ORDER BY id ASC`
	rows, err := repo.q.QueryContext(ctx, query, d.ID)
	if err != nil {
		return fmt.Errorf("load moves: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var m entity.StockMove
		if err := rows.Scan(&m.ID, &m.ProductID, &m.State, &m.Demand, &m.DoneQuantity, &m.ReturnOfMoveID); err != nil {
			return fmt.Errorf("load moves: %w", err)
		}
		d.Moves = append(d.Moves, m)
	}
	return rows.Err()
}

func (repo *DeliveryRepo) SetState(ctx context.Context, id int64, state entity.DeliveryState) error {
	// Completing a delivery also stamps date_done and marks its moves.
	if state == entity.DeliveryDone {
		const query = `
UPDATE deliveries SET state = $1, date_done = NOW()
WHERE id = $2`
		res, err := repo.q.ExecContext(ctx, query, state, id)
		if err != nil {
			return fmt.Errorf("SetState: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("SetState: delivery %d: %w", id, entity.ErrNotFound)
		}
		const moveQuery = `UPDATE stock_moves SET state = 'done' WHERE delivery_id = $1`
		if _, err := repo.q.ExecContext(ctx, moveQuery, id); err != nil {
			return fmt.Errorf("SetState: %w", err)
		}
		return nil
	}

	const query = `UPDATE deliveries SET state = $1 WHERE id = $2`
	res, err := repo.q.ExecContext(ctx, query, state, id)
	if err != nil {
		return fmt.Errorf("SetState: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("SetState: delivery %d: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (repo *DeliveryRepo) MarkWebhookSent(ctx context.Context, storefrontID string) error {
	const query = `
UPDATE deliveries SET webhook_sent = TRUE
WHERE storefront_order_id = $1`
	if _, err := repo.q.ExecContext(ctx, query, storefrontID); err != nil {
		return fmt.Errorf("MarkWebhookSent: %w", err)
	}
	return nil
}
