package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"

	"checkout-backend/internal/domain"
	"checkout-backend/internal/payment"
	orderrepo "checkout-backend/internal/repository/order"
	"github.com/google/uuid"
)

type Service struct {
	carts    cartRepo
	orders   orderRepo
	gateway  payment.Gateway
	currency string
	logger   *log.Logger
}

type cartRepo interface {
	GetBySession(ctx context.Context, sessionID string) (*domain.Cart, error)
}

type orderRepo interface {
	Create(ctx context.Context, in orderrepo.CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.Order, error)
	LatestPendingByCheckoutKey(ctx context.Context, sessionID, checkoutKey string) (*domain.Order, error)
	SetPaymentIntent(ctx context.Context, orderID, intentID string) error
}

// StartResult is what the client needs to complete payment.
type StartResult struct {
	ClientSecret    string `json:"clientSecret"`
	OrderID         string `json:"orderId"`
	PaymentIntentID string `json:"paymentIntentId"`
}

func New(carts cartRepo, orders orderRepo, gateway payment.Gateway, currency string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{carts: carts, orders: orders, gateway: gateway, currency: currency, logger: logger}
}

// Start turns a non-empty cart into a pending order plus a payment intent.
// A retry with an unchanged cart resumes the existing pending order instead
// of creating a second one; a gateway failure leaves the pending order
// without an intent id rather than rolling it back, so the failed attempt
// stays inspectable.
func (s *Service) Start(ctx context.Context, sessionID string) (*StartResult, error) {
	cart, err := s.carts.GetBySession(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	key := checkoutKey(cart)

	order, err := s.orders.LatestPendingByCheckoutKey(ctx, sessionID, key)
	switch {
	case err == nil:
		if order.PaymentIntentID != nil {
			// Same cart, intent already created: hand back the existing
			// attempt instead of charging twice.
			intent, err := s.gateway.RetrieveIntent(ctx, *order.PaymentIntentID)
			if err != nil {
				return nil, err
			}
			s.logger.Printf("checkout: resumed order=%s intent=%s session=%s", order.ID, intent.ID, sessionID)
			return &StartResult{ClientSecret: intent.ClientSecret, OrderID: order.ID, PaymentIntentID: intent.ID}, nil
		}
		// Pending order from an attempt that died before the gateway call
		// succeeded; attach a fresh intent to it.
	case errors.Is(err, domain.ErrNotFound):
		items := make([]domain.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			items = append(items, domain.OrderItem{
				ProductID:      item.ProductID,
				Name:           item.Name,
				UnitPriceCents: item.UnitPriceCents,
				Quantity:       item.Quantity,
				Image:          item.Image,
			})
		}
		order, err = s.orders.Create(ctx, orderrepo.CreateOrderInput{
			ID:          uuid.NewString(),
			SessionID:   sessionID,
			Items:       items,
			TotalCents:  cart.TotalCents,
			CheckoutKey: key,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, order.TotalCents, s.currency, map[string]string{
		"orderId":   order.ID,
		"sessionId": sessionID,
	})
	if err != nil {
		s.logger.Printf("checkout: intent creation failed order=%s session=%s error=%v", order.ID, sessionID, err)
		return nil, err
	}

	if err := s.orders.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		return nil, err
	}

	s.logger.Printf("checkout: started order=%s intent=%s session=%s total_cents=%d", order.ID, intent.ID, sessionID, order.TotalCents)
	return &StartResult{ClientSecret: intent.ClientSecret, OrderID: order.ID, PaymentIntentID: intent.ID}, nil
}

func (s *Service) OrdersBySession(ctx context.Context, sessionID string) ([]domain.Order, error) {
	return s.orders.ListBySession(ctx, sessionID)
}

func (s *Service) OrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

// checkoutKey hashes the cart snapshot so a retried checkout with an
// unchanged cart can be matched to its pending order.
func checkoutKey(cart *domain.Cart) string {
	h := sha256.New()
	for _, item := range cart.Items {
		fmt.Fprintf(h, "%s|%d|%d\n", item.ProductID, item.Quantity, item.UnitPriceCents)
	}
	return hex.EncodeToString(h.Sum(nil))
}
