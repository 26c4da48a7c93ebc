package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"commerce-bridge/internal/domain/entity"
	"commerce-bridge/internal/repository"
)

type InvoiceRepo struct{ q querier }

func NewInvoiceRepo(q querier) repository.InvoiceRepository {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, name, move_type, state, payment_state, COALESCE(order_id, 0), storefront_order_id, COALESCE(reversed_id, 0), invoice_date`

func scanInvoice(row interface{ Scan(...any) error }) (*entity.Invoice, error) {
	var inv entity.Invoice
	var name, storefrontID sql.NullString
	var date sql.NullTime
	if err := row.Scan(
		&inv.ID, &name, &inv.MoveType, &inv.State, &inv.PaymentState,
		&inv.OrderID, &storefrontID, &inv.ReversedID, &date,
	); err != nil {
		return nil, err
	}
	inv.Name = name.String
	inv.StorefrontOrderID = storefrontID.String
	inv.Date = date.Time
	return &inv, nil
}

func (repo *InvoiceRepo) Get(ctx context.Context, id int64) (*entity.Invoice, error) {
	const query = `
SELECT ` + invoiceColumns + `
FROM invoices
WHERE id = $1
LIMIT 1`
	inv, err := scanInvoice(repo.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return inv, nil
}

func (repo *InvoiceRepo) ListByOrder(ctx context.Context, orderID int64) ([]*entity.Invoice, error) {
	const query = `
SELECT ` + invoiceColumns + `
FROM invoices
WHERE order_id = $1
ORDER BY id ASC`
	rows, err := repo.q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("ListByOrder: %w", err)
	}
	defer func() { _ = rows.Close() }()

	invoices := make([]*entity.Invoice, 0, 4)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByOrder: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (repo *InvoiceRepo) CreateFromOrder(ctx context.Context, order *entity.SaleOrder) (*entity.Invoice, error) {
	if len(order.Lines) == 0 {
		return nil, fmt.Errorf("CreateFromOrder: order %s has nothing to invoice", order.Name)
	}

	const query = `
INSERT INTO invoices (move_type, state, payment_state, order_id, storefront_order_id, invoice_date)
VALUES ('out_invoice', 'draft', 'not_paid', $1, $2, NOW())
RETURNING id`
	var id int64
	if err := repo.q.QueryRowContext(ctx, query, order.ID, nullString(order.StorefrontOrderID)).Scan(&id); err != nil {
		return nil, fmt.Errorf("CreateFromOrder: %w", err)
	}

	const lineQuery = `
INSERT INTO invoice_lines (invoice_id, product_id, quantity)
SELECT $1, product_id, quantity
FROM sale_order_lines
WHERE order_id = $2`
	if _, err := repo.q.ExecContext(ctx, lineQuery, id, order.ID); err != nil {
		return nil, fmt.Errorf("CreateFromOrder: copy lines: %w", err)
	}

	return &entity.Invoice{
		ID:                id,
		MoveType:          entity.MoveInvoice,
		State:             entity.InvoiceDraft,
		PaymentState:      entity.PaymentNotPaid,
		OrderID:           order.ID,
		StorefrontOrderID: order.StorefrontOrderID,
	}, nil
}

func (repo *InvoiceRepo) CreateReversal(ctx context.Context, inv *entity.Invoice, reason string) (*entity.Invoice, error) {
	const query = `
INSERT INTO invoices (move_type, state, payment_state, order_id, storefront_order_id, reversed_id, reversal_reason, invoice_date)
VALUES ('out_refund', 'draft', 'not_paid', NULLIF($1, 0), $2, $3, NULLIF($4, ''), NOW())
RETURNING id`
	var id int64
	err := repo.q.QueryRowContext(ctx, query,
		inv.OrderID, nullString(inv.StorefrontOrderID), inv.ID, reason,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("CreateReversal: %w", err)
	}

	const lineQuery = `
INSERT INTO invoice_lines (invoice_id, product_id, quantity)
SELECT $1, product_id, quantity
FROM invoice_lines
WHERE invoice_id = $2`
	if _, err := repo.q.ExecContext(ctx, lineQuery, id, inv.ID); err != nil {
		return nil, fmt.Errorf("CreateReversal: copy lines: %w", err)
	}

	return &entity.Invoice{
		ID:                id,
		MoveType:          entity.MoveCreditNote,
		State:             entity.InvoiceDraft,
		PaymentState:      entity.PaymentNotPaid,
		OrderID:           inv.OrderID,
		StorefrontOrderID: inv.StorefrontOrderID,
		ReversedID:        inv.ID,
	}, nil
}

func (repo *InvoiceRepo) Post(ctx context.Context, id int64) error {
	// Posting assigns the sequence-based document name.
	const query = `
UPDATE invoices SET
       state = 'posted',
       name  = CASE WHEN move_type = 'out_refund'
               THEN 'RINV/' || to_char(NOW(), 'YYYY') || '/' || lpad(id::text, 5, '0')
               ELSE 'INV/'  || to_char(NOW(), 'YYYY') || '/' || lpad(id::text, 5, '0')
               END
WHERE id = $1 AND state = 'draft'`
	res, err := repo.q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Post: invoice %d is not a draft: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (repo *InvoiceRepo) SetPaymentState(ctx context.Context, id int64, state string) error {
	const query = `UPDATE invoices SET payment_state = $1 WHERE id = $2`
	res, err := repo.q.ExecContext(ctx, query, state, id)
	if err != nil {
		return fmt.Errorf("SetPaymentState: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("SetPaymentState: invoice %d: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (repo *InvoiceRepo) GetJournal(ctx context.Context, id int64) (*entity.Journal, error) {
	const query = `SELECT id, name FROM journals WHERE id = $1 LIMIT 1`
	var j entity.Journal
	err := repo.q.QueryRowContext(ctx, query, id).Scan(&j.ID, &j.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("journal %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetJournal: %w", err)
	}
	return &j, nil
}

func (repo *InvoiceRepo) RegisterPayment(ctx context.Context, invoiceID, journalID int64, ref string) (*entity.Payment, error) {
	const registerQuery = `
INSERT INTO payment_registers (invoice_id, journal_id, created_at)
VALUES ($1, $2, NOW())
RETURNING id`
	var registerID int64
	if err := repo.q.QueryRowContext(ctx, registerQuery, invoiceID, journalID).Scan(&registerID); err != nil {
		return nil, fmt.Errorf("RegisterPayment: %w", err)
	}

	const paymentQuery = `
INSERT INTO payments (invoice_id, journal_id, ref, register_id)
VALUES ($1, $2, NULLIF($3, ''), $4)
RETURNING id`
	var paymentID int64
	if err := repo.q.QueryRowContext(ctx, paymentQuery, invoiceID, journalID, ref, registerID).Scan(&paymentID); err != nil {
		return nil, fmt.Errorf("RegisterPayment: %w", err)
	}

	return &entity.Payment{
		ID:         paymentID,
		InvoiceID:  invoiceID,
		JournalID:  journalID,
		Ref:        ref,
		RegisterID: registerID,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
