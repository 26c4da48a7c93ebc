package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"commerce-bridge/internal/domain/entity"
	"commerce-bridge/internal/repository"
)

type ProductRepo struct{ q querier }

func NewProductRepo(q querier) repository.ProductRepository {
	return &ProductRepo{q: q}
}

const productColumns = `id, sku, name, storable, sellable, qty_on_hand, qty_forecast, qty_outgoing`

func scanProduct(row interface{ Scan(...any) error }) (*entity.Product, error) {
	var p entity.Product
	var sku sql.NullString
	if err := row.Scan(
		&p.ID, &sku, &p.Name, &p.Storable, &p.Sellable,
		&p.OnHand, &p.Forecast, &p.Outgoing,
	); err != nil {
		return nil, err
	}
	p.SKU = sku.String
	return &p, nil
}

func (repo *ProductRepo) Get(ctx context.Context, id int64) (*entity.Product, error) {
	const query = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
LIMIT 1`
	p, err := scanProduct(repo.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return p, nil
}

func (repo *ProductRepo) GetMany(ctx context.Context, ids []int64) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `
SELECT ` + productColumns + `
FROM products
WHERE id = ANY($1)
ORDER BY id ASC`
	// The pgx stdlib driver binds []int64 natively for ANY($1).
	rows, err := repo.q.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("GetMany: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := make([]*entity.Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("GetMany: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (repo *ProductRepo) ListStorable(ctx context.Context) ([]*entity.Product, error) {
	const query = `
SELECT ` + productColumns + `
FROM products
WHERE storable = TRUE
ORDER BY id ASC`
	rows, err := repo.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListStorable: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := make([]*entity.Product, 0, 100)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("ListStorable: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (repo *ProductRepo) UpdateQuantities(ctx context.Context, p *entity.Product) error {
	const query = `
UPDATE products SET
       qty_on_hand  = $1,
       qty_forecast = $2,
       qty_outgoing = $3
WHERE id = $4`
	res, err := repo.q.ExecContext(ctx, query, p.OnHand, p.Forecast, p.Outgoing, p.ID)
	if err != nil {
		return fmt.Errorf("UpdateQuantities: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdateQuantities: product %d: %w", p.ID, entity.ErrNotFound)
	}
	return nil
}
