package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidPrice indicates a negative product price.
	ErrInvalidPrice = errors.New("price must not be negative")
	// ErrInvalidDiscount indicates a discount fraction outside [0,1).
	ErrInvalidDiscount = errors.New("discount must be in [0,1)")
	// ErrInvalidQuantity indicates a line item quantity below one.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrEmptyCart is returned when an order is requested for an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// ValidationError reports which product field failed validation.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
