package domain

import "time"

type Cart struct {
	ID         string     `json:"-"`
	SessionID  string     `json:"sessionId"`
	TotalCents int64      `json:"totalCents"`
	CreatedAt  time.Time  `json:"createdAt"`
	Items      []CartItem `json:"items"`
}

type CartItem struct {
	ID             string    `json:"id"`
	CartID         string    `json:"-"`
	ProductID      string    `json:"productId"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Quantity       int       `json:"quantity"`
	Image          string    `json:"image,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// EmptyCart is the view returned for sessions that never added anything.
// Callers get a zero-total cart instead of a not-found error.
func EmptyCart(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Items: []CartItem{}}
}
