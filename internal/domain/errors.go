package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart indicates checkout was attempted with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidSignature indicates webhook signature verification failed.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrPaymentNotConfirmed indicates the payment provider does not
	// corroborate the client's claim that the payment succeeded.
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
)
