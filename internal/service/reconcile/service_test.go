package reconcile

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"checkout-backend/internal/domain"
	"checkout-backend/internal/events"
	"checkout-backend/internal/metrics"
	"checkout-backend/internal/payment"
	orderrepo "checkout-backend/internal/repository/order"
	"github.com/prometheus/client_golang/prometheus"
)

// fakeOrderRepo implements the settle contract in memory: only pending
// orders transition, losers get the current row back.
type fakeOrderRepo struct {
	byIntent    map[string]*domain.Order
	settleCalls int
}

func (f *fakeOrderRepo) Settle(_ context.Context, in orderrepo.SettleInput) (*domain.Order, bool, error) {
	f.settleCalls++
	o, ok := f.byIntent[in.PaymentIntentID]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	if o.Status.IsTerminal() {
		cp := *o
		return &cp, false, nil
	}
	o.Status = in.Status
	if in.CustomerName != "" {
		o.CustomerName = in.CustomerName
	}
	if in.CustomerEmail != "" {
		o.CustomerEmail = in.CustomerEmail
	}
	cp := *o
	return &cp, true, nil
}

type fakeCartRepo struct {
	deleted []string
}

func (f *fakeCartRepo) DeleteBySession(_ context.Context, sessionID string) error {
	f.deleted = append(f.deleted, sessionID)
	return nil
}

type stubGateway struct {
	intent *payment.Intent
	err    error
}

func (s *stubGateway) CreateIntent(_ context.Context, _ int64, _ string, _ map[string]string) (*payment.Intent, error) {
	return nil, errors.New("not used")
}

func (s *stubGateway) RetrieveIntent(_ context.Context, _ string) (*payment.Intent, error) {
	return s.intent, s.err
}

type stubPublisher struct {
	published []events.OrderSettled
	err       error
}

func (s *stubPublisher) OrderSettled(_ context.Context, evt events.OrderSettled) error {
	s.published = append(s.published, evt)
	return s.err
}

type fixture struct {
	svc       *Service
	orders    *fakeOrderRepo
	carts     *fakeCartRepo
	gateway   *stubGateway
	publisher *stubPublisher
}

func newFixture(orders map[string]*domain.Order, gw *stubGateway) *fixture {
	orderRepo := &fakeOrderRepo{byIntent: orders}
	cartRepo := &fakeCartRepo{}
	pub := &stubPublisher{}
	svc := &Service{
		orders:    orderRepo,
		carts:     cartRepo,
		gateway:   gw,
		publisher: pub,
		metrics:   metrics.NewReconcile(prometheus.NewRegistry()),
		logger:    log.New(io.Discard, "", 0),
	}
	return &fixture{svc: svc, orders: orderRepo, carts: cartRepo, gateway: gw, publisher: pub}
}

func strPtr(v string) *string {
	return &v
}

func pendingOrder(intentID string) *domain.Order {
	return &domain.Order{
		ID:              "o1",
		SessionID:       "s1",
		Status:          domain.OrderStatusPending,
		TotalCents:      200,
		PaymentIntentID: strPtr(intentID),
	}
}

func succeededEvent(intentID string) payment.Event {
	return payment.Event{Kind: payment.EventIntentSucceeded, RawType: "payment_intent.succeeded", IntentID: intentID}
}

func TestConfirmRejectedWhenProviderDisagrees(t *testing.T) {
	f := newFixture(
		map[string]*domain.Order{"pi_1": pendingOrder("pi_1")},
		&stubGateway{intent: &payment.Intent{ID: "pi_1", Status: "requires_payment_method"}},
	)
	_, err := f.svc.Confirm(context.Background(), "pi_1", "", "")
	if !errors.Is(err, domain.ErrPaymentNotConfirmed) {
		t.Fatalf("expected payment not confirmed, got %v", err)
	}
	if f.orders.settleCalls != 0 {
		t.Fatal("no mutation may happen when the provider does not report success")
	}
}

func TestConfirmGatewayErrorSurfaces(t *testing.T) {
	f := newFixture(nil, &stubGateway{err: errors.New("provider down")})
	_, err := f.svc.Confirm(context.Background(), "pi_1", "", "")
	if err == nil || err.Error() != "provider down" {
		t.Fatalf("expected gateway error, got %v", err)
	}
}

func TestConfirmCompletesOrderAndClearsCart(t *testing.T) {
	f := newFixture(
		map[string]*domain.Order{"pi_1": pendingOrder("pi_1")},
		&stubGateway{intent: &payment.Intent{ID: "pi_1", Status: payment.IntentStatusSucceeded}},
	)
	order, err := f.svc.Confirm(context.Background(), "pi_1", "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != domain.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", order.Status)
	}
	if order.CustomerName != "Ada" || order.CustomerEmail != "ada@example.com" {
		t.Fatalf("customer fields not backfilled: %+v", order)
	}
	if len(f.carts.deleted) != 1 || f.carts.deleted[0] != "s1" {
		t.Fatalf("expected cart cleanup for s1, got %v", f.carts.deleted)
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0].Status != domain.OrderStatusCompleted {
		t.Fatalf("expected one settled event, got %+v", f.publisher.published)
	}
}

func TestConfirmUnknownIntentIsNotFound(t *testing.T) {
	f := newFixture(
		map[string]*domain.Order{},
		&stubGateway{intent: &payment.Intent{ID: "pi_x", Status: payment.IntentStatusSucceeded}},
	)
	_, err := f.svc.Confirm(context.Background(), "pi_x", "", "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDuplicateSucceededEventIsNoop(t *testing.T) {
	f := newFixture(
		map[string]*domain.Order{"pi_1": pendingOrder("pi_1")},
		&stubGateway{intent: &payment.Intent{ID: "pi_1", Status: payment.IntentStatusSucceeded}},
	)
	ctx := context.Background()

	if _, err := f.svc.Confirm(ctx, "pi_1", "", ""); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := f.svc.HandleEvent(ctx, succeededEvent("pi_1")); err != nil {
		t.Fatalf("duplicate event must be absorbed, got %v", err)
	}

	if f.orders.byIntent["pi_1"].Status != domain.OrderStatusCompleted {
		t.Fatalf("status changed by duplicate: %s", f.orders.byIntent["pi_1"].Status)
	}
	if len(f.carts.deleted) != 1 {
		t.Fatalf("cart cleanup must run once, ran %d times", len(f.carts.deleted))
	}
	if len(f.publisher.published) != 1 {
		t.Fatalf("settled event must publish once, published %d", len(f.publisher.published))
	}
}

func TestTriggersCommuteEventFirst(t *testing.T) {
	f := newFixture(
		map[string]*domain.Order{"pi_1": pendingOrder("pi_1")},
		&stubGateway{intent: &payment.Intent{ID: "pi_1", Status: payment.IntentStatusSucceeded}},
	)
	ctx := context.Background()

	if err := f.svc.HandleEvent(ctx, succeededEvent("pi_1")); err != nil {
		t.Fatalf("event: %v", err)
	}
	order, err := f.svc.Confirm(ctx, "pi_1", "Ada", "")
	if err != nil {
		t.Fatalf("confirm after event: %v", err)
	}

	if order.Status != domain.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", order.Status)
	}
	if len(f.carts.deleted) != 1 || len(f.publisher.published) != 1 {
		t.Fatalf("side effects must run exactly once: deletes=%d publishes=%d",
			len(f.carts.deleted), len(f.publisher.published))
	}
}

func TestLateFailedEventCannotRevertCompletedOrder(t *testing.T) {
	f := newFixture(
		map[string]*domain.Order{"pi_1": pendingOrder("pi_1")},
		&stubGateway{intent: &payment.Intent{ID: "pi_1", Status: payment.IntentStatusSucceeded}},
	)
	ctx := context.Background()

	if _, err := f.svc.Confirm(ctx, "pi_1", "", ""); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	failed := payment.Event{Kind: payment.EventIntentFailed, RawType: "payment_intent.payment_failed", IntentID: "pi_1"}
	if err := f.svc.HandleEvent(ctx, failed); err != nil {
		t.Fatalf("late failed event must be absorbed, got %v", err)
	}
	if got := f.orders.byIntent["pi_1"].Status; got != domain.OrderStatusCompleted {
		t.Fatalf("completed order reverted to %s", got)
	}
}

func TestFailedEventSettlesWithoutCartCleanup(t *testing.T) {
	f := newFixture(map[string]*domain.Order{"pi_1": pendingOrder("pi_1")}, &stubGateway{})
	evt := payment.Event{Kind: payment.EventIntentFailed, RawType: "payment_intent.payment_failed", IntentID: "pi_1"}
	if err := f.svc.HandleEvent(context.Background(), evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.orders.byIntent["pi_1"].Status != domain.OrderStatusFailed {
		t.Fatalf("expected failed, got %s", f.orders.byIntent["pi_1"].Status)
	}
	if len(f.carts.deleted) != 0 {
		t.Fatal("cart must survive a failed payment")
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0].Status != domain.OrderStatusFailed {
		t.Fatalf("expected failed settled event, got %+v", f.publisher.published)
	}
}

func TestRefundEventCancelsOrder(t *testing.T) {
	f := newFixture(map[string]*domain.Order{"pi_1": pendingOrder("pi_1")}, &stubGateway{})
	evt := payment.Event{Kind: payment.EventChargeRefunded, RawType: "charge.refunded", IntentID: "pi_1"}
	if err := f.svc.HandleEvent(context.Background(), evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.orders.byIntent["pi_1"].Status != domain.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", f.orders.byIntent["pi_1"].Status)
	}
}

func TestUnmatchedIntentIsAbsorbed(t *testing.T) {
	f := newFixture(map[string]*domain.Order{}, &stubGateway{})
	if err := f.svc.HandleEvent(context.Background(), succeededEvent("pi_missing")); err != nil {
		t.Fatalf("unmatched event must not error, got %v", err)
	}
	if len(f.publisher.published) != 0 {
		t.Fatal("no event may publish for an unmatched intent")
	}
}

func TestUnknownEventKindIsAbsorbed(t *testing.T) {
	f := newFixture(map[string]*domain.Order{"pi_1": pendingOrder("pi_1")}, &stubGateway{})
	evt := payment.Event{Kind: payment.EventUnknown, RawType: "customer.created"}
	if err := f.svc.HandleEvent(context.Background(), evt); err != nil {
		t.Fatalf("unknown event must not error, got %v", err)
	}
	if f.orders.settleCalls != 0 {
		t.Fatal("unknown events must not touch orders")
	}
}

func TestPublisherFailureDoesNotFailSettlement(t *testing.T) {
	f := newFixture(map[string]*domain.Order{"pi_1": pendingOrder("pi_1")}, &stubGateway{})
	f.publisher.err = errors.New("broker down")
	if err := f.svc.HandleEvent(context.Background(), succeededEvent("pi_1")); err != nil {
		t.Fatalf("publisher failure must be logged, not propagated: %v", err)
	}
	if f.orders.byIntent["pi_1"].Status != domain.OrderStatusCompleted {
		t.Fatal("order must still settle")
	}
}
