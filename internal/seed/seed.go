package seed

import (
	"context"
	"fmt"
	"io"
	"log"

	"checkout-backend/internal/domain"
	productrepo "checkout-backend/internal/repository/product"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Apply inserts demo catalog data. It is idempotent via the product upsert.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	repo := productrepo.NewPostgres(pool, log.New(io.Discard, "", 0))

	products := []domain.Product{
		{
			Name:         "Wireless Headphones",
			Description:  "High-quality wireless headphones with noise cancellation",
			PriceCents:   249900,
			Image:        "https://m.media-amazon.com/images/I/61LJwFvVT5L._SX679_.jpg",
			AvailableQty: 50,
		},
		{
			Name:         "Smart Watch",
			Description:  "Fitness tracker with heart-rate monitoring",
			PriceCents:   399900,
			Image:        "https://m.media-amazon.com/images/I/71PHn9BQ4aL._SX679_.jpg",
			AvailableQty: 30,
		},
		{
			Name:         "Bluetooth Speaker",
			Description:  "Portable speaker with deep bass",
			PriceCents:   149900,
			Image:        "https://m.media-amazon.com/images/I/71xsVbqMgKL._SX679_.jpg",
			AvailableQty: 40,
		},
		{
			Name:         "Laptop Backpack",
			Description:  "Water-resistant backpack with a padded laptop sleeve",
			PriceCents:   99900,
			Image:        "https://m.media-amazon.com/images/I/71cGLeB1eyL._SX679_.jpg",
			AvailableQty: 60,
		},
	}

	for _, p := range products {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
	}
	return nil
}
