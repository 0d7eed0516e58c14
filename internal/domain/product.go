package domain

import "time"

type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	PriceCents   int64     `json:"priceCents"`
	Image        string    `json:"image,omitempty"`
	AvailableQty int       `json:"availableQty"`
	CreatedAt    time.Time `json:"createdAt"`
}
