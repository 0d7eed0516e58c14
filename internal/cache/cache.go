package cache

import (
	"context"
	"errors"

	"checkout-backend/internal/domain"
)

// ProductCache fronts catalog lookups done when denormalizing cart lines.
type ProductCache interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Set(ctx context.Context, product *domain.Product) error
}

var ErrCacheMiss = errors.New("cache miss")
