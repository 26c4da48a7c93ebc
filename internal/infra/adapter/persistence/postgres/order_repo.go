package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"commerce-bridge/internal/domain/entity"
	"commerce-bridge/internal/repository"
)

type OrderRepo struct{ q querier }

func NewOrderRepo(q querier) repository.OrderRepository {
	return &OrderRepo{q: q}
}

const orderColumns = `id, name, storefront_order_id, state, invoice_status, date_order`

func scanOrder(row interface{ Scan(...any) error }) (*entity.SaleOrder, error) {
	var o entity.SaleOrder
	var storefrontID sql.NullString
	var dateOrder sql.NullTime
	if err := row.Scan(
		&o.ID, &o.Name, &storefrontID, &o.State, &o.InvoiceStatus, &dateOrder,
	); err != nil {
		return nil, err
	}
	o.StorefrontOrderID = storefrontID.String
	o.DateOrder = dateOrder.Time
	return &o, nil
}

func (repo *OrderRepo) Get(ctx context.Context, id int64) (*entity.SaleOrder, error) {
	const query = `
SELECT ` + orderColumns + `
FROM sale_orders
WHERE id = $1
LIMIT 1`
	o, err := scanOrder(repo.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sale order %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	if err := repo.loadLines(ctx, o); err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return o, nil
}

func (repo *OrderRepo) GetByStorefrontID(ctx context.Context, storefrontID string) (*entity.SaleOrder, error) {
	const query = `
SELECT ` + orderColumns + `
FROM sale_orders
WHERE storefront_order_id = $1
ORDER BY id DESC
LIMIT 1`
	o, err := scanOrder(repo.q.QueryRowContext(ctx, query, storefrontID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storefront order %s: %w", storefrontID, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByStorefrontID: %w", err)
	}
	if err := repo.loadLines(ctx, o); err != nil {
		return nil, fmt.Errorf("GetByStorefrontID: %w", err)
	}
	return o, nil
}

// ListPaidContaining returns invoiced, fully paid orders with a line
// for any of the given products. Lines are not loaded: callers only
// need the order header to locate its deliveries by origin.
func (repo *OrderRepo) ListPaidContaining(ctx context.Context, productIDs []int64) ([]*entity.SaleOrder, error) {
	const query = `
SELECT o.id, o.name, o.storefront_order_id, o.state, o.invoice_status, o.date_order
FROM sale_orders o
WHERE o.invoice_status = 'invoiced'
  AND EXISTS (
    SELECT 1 FROM sale_order_lines l
    WHERE l.order_id = o.id AND l.product_id = ANY($1)
  )
  AND EXISTS (SELECT 1 FROM invoices i WHERE i.order_id = o.id)
  AND NOT EXISTS (
    SELECT 1 FROM invoices i
    WHERE i.order_id = o.id AND i.payment_state <> 'paid'
  )
ORDER BY o.id ASC`
	rows, err := repo.q.QueryContext(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("ListPaidContaining: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.SaleOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("ListPaidContaining: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (repo *OrderRepo) loadLines(ctx context.Context, o *entity.SaleOrder) error {
	const query = `
SELECT id, product_id, quantity
FROM sale_order_lines
WHERE order_id = $1
ORDER BY id ASC`
	rows, err := repo.q.QueryContext(ctx, query, o.ID)
	if err != nil {
		return fmt.Errorf("load lines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var line entity.OrderLine
		if err := rows.Scan(&line.ID, &line.ProductID, &line.Quantity); err != nil {
			return fmt.Errorf("load lines: %w", err)
		}
		o.Lines = append(o.Lines, line)
	}
	return rows.Err()
}

func (repo *OrderRepo) SetState(ctx context.Context, id int64, state entity.OrderState) error {
	const query = `UPDATE sale_orders SET state = $1 WHERE id = $2`
	res, err := repo.q.ExecContext(ctx, query, state, id)
	if err != nil {
		return fmt.Errorf("SetState: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("SetState: sale order %d: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (repo *OrderRepo) SetInvoiceStatus(ctx context.Context, id int64, status string) error {
	const query = `UPDATE sale_orders SET invoice_status = $1 WHERE id = $2`
	res, err := repo.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("SetInvoiceStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("SetInvoiceStatus: sale order %d: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (repo *OrderRepo) SetDateOrder(ctx context.Context, id int64, t time.Time) error {
	const query = `UPDATE sale_orders SET date_order = $1 WHERE id = $2`
	_, err := repo.q.ExecContext(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("SetDateOrder: %w", err)
	}
	return nil
}
