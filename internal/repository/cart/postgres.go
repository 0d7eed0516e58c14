package cart

import (
	"context"
	"errors"

	"checkout-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetBySession(ctx context.Context, sessionID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, `
SELECT id::text, session_id, total_cents, created_at
FROM carts
WHERE session_id = $1
`, sessionID).Scan(&cart.ID, &cart.SessionID, &cart.TotalCents, &cart.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, cart_id::text, product_id::text, name, unit_price_cents, quantity, COALESCE(image, ''), created_at
FROM cart_lines
WHERE cart_id = $1
ORDER BY created_at ASC
`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.Name,
			&item.UnitPriceCents,
			&item.Quantity,
			&item.Image,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *postgresRepo) AddItem(ctx context.Context, sessionID string, product domain.Product, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var cartID string
	if err := tx.QueryRow(ctx, `
INSERT INTO carts (session_id)
VALUES ($1)
ON CONFLICT (session_id) DO UPDATE SET session_id = EXCLUDED.session_id
RETURNING id::text
`, sessionID).Scan(&cartID); err != nil {
		return err
	}

	// Merge quantity into an existing line; the denormalized name/price/image
	// keep their add-time values.
	if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, product_id, name, unit_price_cents, quantity, image)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
ON CONFLICT (cart_id, product_id) DO UPDATE SET
    quantity = cart_lines.quantity + EXCLUDED.quantity
`, cartID, product.ID, product.Name, product.PriceCents, quantity, product.Image); err != nil {
		return err
	}

	if err := recomputeTotal(ctx, tx, cartID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) SetItemQuantity(ctx context.Context, sessionID, productID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cartID, err := cartIDForSession(ctx, tx, sessionID)
	if err != nil {
		return err
	}

	if quantity <= 0 {
		// Zero or negative quantity is a deletion, not an error.
		cmd, err := tx.Exec(ctx, `
DELETE FROM cart_lines
WHERE cart_id = $1 AND product_id = $2
`, cartID, productID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	} else {
		cmd, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1
WHERE cart_id = $2 AND product_id = $3
`, quantity, cartID, productID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	}

	if err := recomputeTotal(ctx, tx, cartID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) RemoveItem(ctx context.Context, sessionID, productID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cartID, err := cartIDForSession(ctx, tx, sessionID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
DELETE FROM cart_lines
WHERE cart_id = $1 AND product_id = $2
`, cartID, productID); err != nil {
		return err
	}

	if err := recomputeTotal(ctx, tx, cartID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.pool.Exec(ctx, `
DELETE FROM carts
WHERE session_id = $1
`, sessionID)
	return err
}

func cartIDForSession(ctx context.Context, tx pgx.Tx, sessionID string) (string, error) {
	var cartID string
	err := tx.QueryRow(ctx, `
SELECT id::text
FROM carts
WHERE session_id = $1
`, sessionID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return cartID, nil
}

// recomputeTotal keeps carts.total_cents equal to the sum over lines at rest.
func recomputeTotal(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `
UPDATE carts
SET total_cents = COALESCE((
	SELECT SUM(unit_price_cents * quantity)
	FROM cart_lines
	WHERE cart_id = $1
), 0)
WHERE id = $1
`, cartID)
	return err
}
