package order

import (
	"context"

	"checkout-backend/internal/domain"
)

type CreateOrderInput struct {
	ID          string
	SessionID   string
	Items       []domain.OrderItem
	TotalCents  int64
	CheckoutKey string
}

// SettleInput carries the optional customer fields backfilled on a
// successful confirmation. Empty values leave the stored columns untouched.
type SettleInput struct {
	PaymentIntentID string
	Status          domain.OrderStatus
	CustomerName    string
	CustomerEmail   string
}

type Repository interface {
	Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Order, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.Order, error)
	// LatestPendingByCheckoutKey returns the newest pending order for the
	// session whose cart snapshot hash matches, or domain.ErrNotFound.
	LatestPendingByCheckoutKey(ctx context.Context, sessionID, checkoutKey string) (*domain.Order, error)
	SetPaymentIntent(ctx context.Context, orderID, intentID string) error
	// Settle applies a terminal status with compare-and-set semantics: only
	// rows still in 'pending' move. The returned bool reports whether this
	// call won the transition; when it did not, the order is returned in its
	// current (already terminal) state. No matching intent id is
	// domain.ErrNotFound.
	Settle(ctx context.Context, in SettleInput) (*domain.Order, bool, error)
}
