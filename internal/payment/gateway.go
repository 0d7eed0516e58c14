package payment

import "context"

// IntentStatusSucceeded is the only provider status that completes an order.
const IntentStatusSucceeded = "succeeded"

// Intent is the provider's view of a single attempted charge.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// EventKind tags the decoded webhook payloads the reconciliation engine
// dispatches on. Anything the provider sends outside this set decodes to
// EventUnknown and is absorbed.
type EventKind string

const (
	EventIntentSucceeded EventKind = "intent_succeeded"
	EventIntentFailed    EventKind = "intent_failed"
	EventChargeRefunded  EventKind = "charge_refunded"
	EventUnknown         EventKind = "unknown"
)

// Event is a signature-verified provider event. IntentID is the sole
// correlation key back to an order; for refunds it is derived from the
// charge's associated intent.
type Event struct {
	Kind     EventKind
	RawType  string
	IntentID string
}

// Gateway wraps the external payment processor. No business logic lives
// behind it; failures surface to the caller and are never retried here.
type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
}
