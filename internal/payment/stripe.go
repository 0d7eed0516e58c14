package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"checkout-backend/internal/domain"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway implements Gateway against the Stripe API and decodes and
// verifies Stripe webhook deliveries.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripe(secretKey, webhookSecret string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return fromStripeIntent(pi), nil
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}}
	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent %s: %w", id, err)
	}
	return fromStripeIntent(pi), nil
}

// VerifyAndParse checks the signature header against the shared webhook
// secret before looking at the payload at all; any verification failure is
// domain.ErrInvalidSignature.
func (g *StripeGateway) VerifyAndParse(payload []byte, sigHeader string) (Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	rawType := string(stripeEvent.Type)
	switch rawType {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(stripeEvent.Data.Raw, &pi); err != nil {
			return Event{}, fmt.Errorf("decode payment intent event: %w", err)
		}
		kind := EventIntentSucceeded
		if rawType == "payment_intent.payment_failed" {
			kind = EventIntentFailed
		}
		return Event{Kind: kind, RawType: rawType, IntentID: pi.ID}, nil
	case "charge.refunded":
		var ch stripe.Charge
		if err := json.Unmarshal(stripeEvent.Data.Raw, &ch); err != nil {
			return Event{}, fmt.Errorf("decode charge event: %w", err)
		}
		intentID := ""
		if ch.PaymentIntent != nil {
			intentID = ch.PaymentIntent.ID
		}
		return Event{Kind: EventChargeRefunded, RawType: rawType, IntentID: intentID}, nil
	default:
		return Event{Kind: EventUnknown, RawType: rawType}, nil
	}
}

func fromStripeIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}
}
