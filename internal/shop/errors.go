package shop

import "errors"

var (
	// ErrNetwork covers transport and connectivity failures.
	ErrNetwork = errors.New("network error")
	// ErrNotFound is returned for unknown ids and category slugs.
	ErrNotFound = errors.New("not found")
	// ErrValidation covers malformed input rejected before or by the server.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidQuantity rejects non-positive add-to-cart quantities.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrStockExceeded signals a quantity vs. stock conflict.
	ErrStockExceeded = errors.New("stock exceeded")
	// ErrEmptyCart signals a checkout attempt on an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrUnauthorized signals a missing or expired credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadResponse signals a server payload that violates the schema.
	// This is the only condition that fails closed: the payload is rejected
	// rather than propagated into cart state.
	ErrBadResponse = errors.New("malformed server response")
	// ErrBusy is returned when the same logical action is already in flight.
	ErrBusy = errors.New("operation already in flight")
)
