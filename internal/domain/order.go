package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsTerminal reports whether no further status transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed || s == OrderStatusCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}

type Order struct {
	ID              string      `json:"id"`
	SessionID       string      `json:"sessionId"`
	Items           []OrderItem `json:"items"`
	TotalCents      int64       `json:"totalCents"`
	Status          OrderStatus `json:"status"`
	PaymentIntentID *string     `json:"paymentIntentId,omitempty"`
	CheckoutKey     string      `json:"-"`
	CustomerName    string      `json:"customerName,omitempty"`
	CustomerEmail   string      `json:"customerEmail,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// OrderItem is the immutable snapshot of a cart line at order-creation time.
type OrderItem struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	Image          string `json:"image,omitempty"`
}
