package repository

import (
	"context"

	"commerce-bridge/internal/domain/entity"
)

type ProductRepository interface {
	Get(ctx context.Context, id int64) (*entity.Product, error)
	// GetMany returns the products for the given IDs. Missing IDs are
	// silently dropped from the result; callers that care about
	// completeness must compare lengths.
	GetMany(ctx context.Context, ids []int64) ([]*entity.Product, error)
	ListStorable(ctx context.Context) ([]*entity.Product, error)
	UpdateQuantities(ctx context.Context, p *entity.Product) error
}
