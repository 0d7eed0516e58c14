package order

import (
	"context"
	"errors"
	"io"
	"log"

	"checkout-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id::text, session_id, items, total_cents, status, payment_intent_id, checkout_key, COALESCE(customer_name, ''), COALESCE(customer_email, ''), created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	const q = `
INSERT INTO orders (id, session_id, items, total_cents, status, checkout_key)
VALUES ($1, $2, $3, $4, 'pending', $5)
RETURNING ` + orderColumns
	row := r.pool.QueryRow(ctx, q, in.ID, in.SessionID, in.Items, in.TotalCents, in.CheckoutKey)
	o, err := scanOrder(row)
	if err != nil {
		r.logger.Printf("order repo: create session=%s error=%v", in.SessionID, err)
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1`, intentID)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE session_id = $1
ORDER BY created_at DESC
`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

func (r *postgresRepo) LatestPendingByCheckoutKey(ctx context.Context, sessionID, checkoutKey string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE session_id = $1 AND checkout_key = $2 AND status = 'pending'
ORDER BY created_at DESC
LIMIT 1
`, sessionID, checkoutKey)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) SetPaymentIntent(ctx context.Context, orderID, intentID string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET payment_intent_id = $1
WHERE id = $2
`, intentID, orderID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Settle(ctx context.Context, in SettleInput) (*domain.Order, bool, error) {
	// Compare-and-set: only orders still pending transition, so a stale
	// failed event can never revert a completed order.
	const q = `
UPDATE orders
SET status = $2,
    customer_name = COALESCE(NULLIF($3, ''), customer_name),
    customer_email = COALESCE(NULLIF($4, ''), customer_email)
WHERE payment_intent_id = $1 AND status = 'pending'
RETURNING ` + orderColumns
	row := r.pool.QueryRow(ctx, q, in.PaymentIntentID, string(in.Status), in.CustomerName, in.CustomerEmail)
	o, err := scanOrder(row)
	if err == nil {
		return o, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	// Lost the race or the intent is unknown; tell them apart.
	existing, err := r.GetByPaymentIntent(ctx, in.PaymentIntentID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var status string
	if err := row.Scan(
		&o.ID,
		&o.SessionID,
		&o.Items,
		&o.TotalCents,
		&status,
		&o.PaymentIntentID,
		&o.CheckoutKey,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.CreatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
