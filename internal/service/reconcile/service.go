package reconcile

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"checkout-backend/internal/domain"
	"checkout-backend/internal/events"
	"checkout-backend/internal/metrics"
	"checkout-backend/internal/payment"
	orderrepo "checkout-backend/internal/repository/order"
)

// Service aligns local order status with the payment provider's outcome.
// Two independent triggers feed it: the client's synchronous confirmation
// call and the provider's asynchronous webhook events. Both funnel through
// the repository's compare-and-set settle, so applying the same terminal
// transition twice is a no-op and the triggers commute.
type Service struct {
	orders    orderRepo
	carts     cartRepo
	gateway   payment.Gateway
	publisher settledPublisher
	metrics   *metrics.Reconcile
	logger    *log.Logger
}

type orderRepo interface {
	Settle(ctx context.Context, in orderrepo.SettleInput) (*domain.Order, bool, error)
}

type cartRepo interface {
	DeleteBySession(ctx context.Context, sessionID string) error
}

type settledPublisher interface {
	OrderSettled(ctx context.Context, evt events.OrderSettled) error
}

// New builds the reconciliation service. publisher may be nil; m may be nil
// when no registry is wired (tests mostly pass a fresh one).
func New(orders orderrepo.Repository, carts cartRepo, gateway payment.Gateway, publisher settledPublisher, m *metrics.Reconcile, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{orders: orders, carts: carts, gateway: gateway, publisher: publisher, metrics: m, logger: logger}
}

// Confirm handles the client-side "I just paid" call. The client's claim is
// never trusted alone: the intent is re-fetched from the gateway first, and
// only a provider-reported success settles the order. Name and email are
// backfilled on the order when provided.
func (s *Service) Confirm(ctx context.Context, intentID, customerName, customerEmail string) (*domain.Order, error) {
	intent, err := s.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != payment.IntentStatusSucceeded {
		s.logger.Printf("reconcile: confirmation rejected intent=%s provider_status=%s", intentID, intent.Status)
		return nil, domain.ErrPaymentNotConfirmed
	}

	order, won, err := s.orders.Settle(ctx, orderrepo.SettleInput{
		PaymentIntentID: intentID,
		Status:          domain.OrderStatusCompleted,
		CustomerName:    customerName,
		CustomerEmail:   customerEmail,
	})
	if err != nil {
		return nil, err
	}
	if won {
		s.finalize(ctx, order)
	} else {
		s.noteAlreadySettled(order, intentID)
	}
	return order, nil
}

// HandleEvent handles a signature-verified provider event. Unmatched intent
// ids, duplicate deliveries and unrecognized kinds are expected and absorbed
// with a log line; the webhook contract only requires that the event was
// received.
func (s *Service) HandleEvent(ctx context.Context, evt payment.Event) error {
	if s.metrics != nil {
		s.metrics.WebhookEvents.WithLabelValues(evt.RawType).Inc()
	}

	switch evt.Kind {
	case payment.EventIntentSucceeded:
		return s.settleFromEvent(ctx, evt, domain.OrderStatusCompleted)
	case payment.EventIntentFailed:
		return s.settleFromEvent(ctx, evt, domain.OrderStatusFailed)
	case payment.EventChargeRefunded:
		return s.settleFromEvent(ctx, evt, domain.OrderStatusCancelled)
	case payment.EventUnknown:
		s.logger.Printf("reconcile: unhandled event type %s", evt.RawType)
		s.drop("unknown_event")
		return nil
	default:
		s.logger.Printf("reconcile: unhandled event kind %s (type %s)", evt.Kind, evt.RawType)
		s.drop("unknown_event")
		return nil
	}
}

func (s *Service) settleFromEvent(ctx context.Context, evt payment.Event, status domain.OrderStatus) error {
	if evt.IntentID == "" {
		s.logger.Printf("reconcile: event %s carries no intent id, dropped", evt.RawType)
		s.drop("no_intent_id")
		return nil
	}

	order, won, err := s.orders.Settle(ctx, orderrepo.SettleInput{
		PaymentIntentID: evt.IntentID,
		Status:          status,
	})
	if errors.Is(err, domain.ErrNotFound) {
		// The gateway stays the durable source of truth; a miss here is
		// droppable because a human can re-query it.
		s.logger.Printf("reconcile: no order for intent=%s event=%s, dropped", evt.IntentID, evt.RawType)
		s.drop("no_matching_order")
		return nil
	}
	if err != nil {
		return err
	}
	if won {
		s.finalize(ctx, order)
	} else {
		s.noteAlreadySettled(order, evt.IntentID)
	}
	return nil
}

// finalize runs the side effects of a won terminal transition: cart cleanup
// on completion, metrics, and the settled event. The order is already
// settled at this point, so failures here are logged, never propagated.
func (s *Service) finalize(ctx context.Context, order *domain.Order) {
	s.logger.Printf("reconcile: order=%s settled status=%s", order.ID, order.Status)
	if s.metrics != nil {
		s.metrics.Settled.WithLabelValues(order.Status.String()).Inc()
	}

	if order.Status == domain.OrderStatusCompleted {
		if err := s.carts.DeleteBySession(ctx, order.SessionID); err != nil {
			s.logger.Printf("reconcile: cart cleanup session=%s error=%v", order.SessionID, err)
		}
	}

	if s.publisher != nil {
		intentID := ""
		if order.PaymentIntentID != nil {
			intentID = *order.PaymentIntentID
		}
		err := s.publisher.OrderSettled(ctx, events.OrderSettled{
			OrderID:         order.ID,
			SessionID:       order.SessionID,
			Status:          order.Status,
			TotalCents:      order.TotalCents,
			PaymentIntentID: intentID,
			SettledAt:       time.Now().UTC(),
		})
		if err != nil {
			s.logger.Printf("reconcile: publish settled order=%s error=%v", order.ID, err)
		}
	}
}

func (s *Service) noteAlreadySettled(order *domain.Order, intentID string) {
	s.logger.Printf("reconcile: order=%s already %s, intent=%s is a no-op", order.ID, order.Status, intentID)
	s.drop("already_settled")
}

func (s *Service) drop(reason string) {
	if s.metrics != nil {
		s.metrics.Dropped.WithLabelValues(reason).Inc()
	}
}
