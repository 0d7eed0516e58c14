package cart

import (
	"context"

	"checkout-backend/internal/domain"
)

type Repository interface {
	// GetBySession returns domain.ErrNotFound when the session has no cart.
	GetBySession(ctx context.Context, sessionID string) (*domain.Cart, error)
	// AddItem creates the cart on first use, merges quantity into an
	// existing line for the same product, and recomputes the cart total.
	AddItem(ctx context.Context, sessionID string, product domain.Product, quantity int) error
	// SetItemQuantity sets the line quantity exactly; quantity <= 0 removes
	// the line. Missing cart or line is domain.ErrNotFound.
	SetItemQuantity(ctx context.Context, sessionID, productID string, quantity int) error
	// RemoveItem deletes the line for productID. Removing an absent line is
	// a no-op; a missing cart is domain.ErrNotFound.
	RemoveItem(ctx context.Context, sessionID, productID string) error
	// DeleteBySession drops the cart and its lines. Idempotent.
	DeleteBySession(ctx context.Context, sessionID string) error
}
