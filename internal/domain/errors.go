package domain

import "errors"

var (
	// ErrInvalidParameter marks negative or NaN numeric input to a formula.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrEmptyCatalog is returned when there is nothing to classify or plan.
	ErrEmptyCatalog = errors.New("empty catalog")
	// ErrInsufficientStock is returned when a decrement would drive stock negative.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrNotFound is returned when a referenced product, supplier or plan is missing.
	ErrNotFound = errors.New("not found")
	// ErrPlanDelivered is returned when receiving a plan that was already received.
	ErrPlanDelivered = errors.New("plan already delivered")
)
