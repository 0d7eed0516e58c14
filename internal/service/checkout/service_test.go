package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"checkout-backend/internal/domain"
	"checkout-backend/internal/payment"
	orderrepo "checkout-backend/internal/repository/order"
)

type stubCartRepo struct {
	cart *domain.Cart
	err  error
}

func (s *stubCartRepo) GetBySession(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

type stubOrderRepo struct {
	pending     *domain.Order
	pendingErr  error
	created     *orderrepo.CreateOrderInput
	createErr   error
	intentOrder string
	intentID    string
	setErr      error
}

func (s *stubOrderRepo) Create(_ context.Context, in orderrepo.CreateOrderInput) (*domain.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &in
	return &domain.Order{
		ID:          in.ID,
		SessionID:   in.SessionID,
		Items:       in.Items,
		TotalCents:  in.TotalCents,
		Status:      domain.OrderStatusPending,
		CheckoutKey: in.CheckoutKey,
	}, nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, _ string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}

func (s *stubOrderRepo) ListBySession(_ context.Context, _ string) ([]domain.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) LatestPendingByCheckoutKey(_ context.Context, _, _ string) (*domain.Order, error) {
	if s.pendingErr != nil {
		return nil, s.pendingErr
	}
	if s.pending == nil {
		return nil, domain.ErrNotFound
	}
	return s.pending, nil
}

func (s *stubOrderRepo) SetPaymentIntent(_ context.Context, orderID, intentID string) error {
	s.intentOrder = orderID
	s.intentID = intentID
	return s.setErr
}

type stubGateway struct {
	created      *payment.Intent
	createErr    error
	lastAmount   int64
	lastCurrency string
	lastMetadata map[string]string
	createCalls  int

	retrieved    *payment.Intent
	retrieveErr  error
	retrievedIDs []string
}

func (s *stubGateway) CreateIntent(_ context.Context, amountCents int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	s.createCalls++
	s.lastAmount = amountCents
	s.lastCurrency = currency
	s.lastMetadata = metadata
	return s.created, s.createErr
}

func (s *stubGateway) RetrieveIntent(_ context.Context, id string) (*payment.Intent, error) {
	s.retrievedIDs = append(s.retrievedIDs, id)
	return s.retrieved, s.retrieveErr
}

func testCart() *domain.Cart {
	return &domain.Cart{
		SessionID:  "s1",
		TotalCents: 200,
		Items: []domain.CartItem{
			{ProductID: "p1", Name: "Mug", UnitPriceCents: 100, Quantity: 2},
		},
	}
}

func newTestService(carts *stubCartRepo, orders *stubOrderRepo, gw *stubGateway) *Service {
	return &Service{
		carts:    carts,
		orders:   orders,
		gateway:  gw,
		currency: "inr",
		logger:   log.New(io.Discard, "", 0),
	}
}

func strPtr(v string) *string {
	return &v
}

func TestStartMissingCartIsEmptyCart(t *testing.T) {
	svc := newTestService(&stubCartRepo{err: domain.ErrNotFound}, &stubOrderRepo{}, &stubGateway{})
	_, err := svc.Start(context.Background(), "s1")
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected empty cart, got %v", err)
	}
}

func TestStartCartWithoutItemsIsEmptyCart(t *testing.T) {
	orders := &stubOrderRepo{}
	svc := newTestService(&stubCartRepo{cart: &domain.Cart{SessionID: "s1"}}, orders, &stubGateway{})
	_, err := svc.Start(context.Background(), "s1")
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected empty cart, got %v", err)
	}
	if orders.created != nil {
		t.Fatal("no order may be created for an empty cart")
	}
}

func TestStartHappyPath(t *testing.T) {
	orders := &stubOrderRepo{}
	gw := &stubGateway{created: &payment.Intent{ID: "pi_1", ClientSecret: "secret_1", Status: "requires_payment_method"}}
	svc := newTestService(&stubCartRepo{cart: testCart()}, orders, gw)

	result, err := svc.Start(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if orders.created == nil {
		t.Fatal("expected an order to be created")
	}
	if orders.created.TotalCents != 200 || len(orders.created.Items) != 1 {
		t.Fatalf("order snapshot mismatch: %+v", orders.created)
	}
	if gw.lastAmount != 200 || gw.lastCurrency != "inr" {
		t.Fatalf("intent created with amount=%d currency=%s", gw.lastAmount, gw.lastCurrency)
	}
	if gw.lastMetadata["orderId"] != orders.created.ID || gw.lastMetadata["sessionId"] != "s1" {
		t.Fatalf("intent metadata mismatch: %+v", gw.lastMetadata)
	}
	if orders.intentOrder != orders.created.ID || orders.intentID != "pi_1" {
		t.Fatalf("intent not persisted onto order: %s %s", orders.intentOrder, orders.intentID)
	}
	if result.ClientSecret != "secret_1" || result.OrderID != orders.created.ID || result.PaymentIntentID != "pi_1" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestStartGatewayFailureLeavesPendingOrder(t *testing.T) {
	orders := &stubOrderRepo{}
	gw := &stubGateway{createErr: errors.New("provider down")}
	svc := newTestService(&stubCartRepo{cart: testCart()}, orders, gw)

	_, err := svc.Start(context.Background(), "s1")
	if err == nil || err.Error() != "provider down" {
		t.Fatalf("expected gateway error surfaced, got %v", err)
	}
	if orders.created == nil {
		t.Fatal("order should exist for audit even though the gateway call failed")
	}
	if orders.intentID != "" {
		t.Fatal("no intent id may be persisted on gateway failure")
	}
}

func TestStartResumesMatchingPendingOrder(t *testing.T) {
	pending := &domain.Order{
		ID:              "o1",
		SessionID:       "s1",
		Status:          domain.OrderStatusPending,
		TotalCents:      200,
		PaymentIntentID: strPtr("pi_1"),
	}
	orders := &stubOrderRepo{pending: pending}
	gw := &stubGateway{retrieved: &payment.Intent{ID: "pi_1", ClientSecret: "secret_1"}}
	svc := newTestService(&stubCartRepo{cart: testCart()}, orders, gw)

	result, err := svc.Start(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orders.created != nil {
		t.Fatal("retry with unchanged cart must not create a second order")
	}
	if gw.createCalls != 0 {
		t.Fatal("retry with an existing intent must not create a second intent")
	}
	if result.OrderID != "o1" || result.PaymentIntentID != "pi_1" || result.ClientSecret != "secret_1" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestStartAttachesIntentToIntentlessPendingOrder(t *testing.T) {
	pending := &domain.Order{
		ID:         "o1",
		SessionID:  "s1",
		Status:     domain.OrderStatusPending,
		TotalCents: 200,
	}
	orders := &stubOrderRepo{pending: pending}
	gw := &stubGateway{created: &payment.Intent{ID: "pi_2", ClientSecret: "secret_2"}}
	svc := newTestService(&stubCartRepo{cart: testCart()}, orders, gw)

	result, err := svc.Start(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orders.created != nil {
		t.Fatal("must reuse the pending order from the failed attempt")
	}
	if orders.intentOrder != "o1" || orders.intentID != "pi_2" {
		t.Fatalf("intent not attached to resumed order: %s %s", orders.intentOrder, orders.intentID)
	}
	if result.OrderID != "o1" || result.PaymentIntentID != "pi_2" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckoutKeyTracksCartContents(t *testing.T) {
	a := testCart()
	b := testCart()
	if checkoutKey(a) != checkoutKey(b) {
		t.Fatal("identical carts must hash identically")
	}
	b.Items[0].Quantity = 3
	if checkoutKey(a) == checkoutKey(b) {
		t.Fatal("changed cart must produce a different key")
	}
}
