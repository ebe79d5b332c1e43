package apperrors

import "errors"

// Missing-data errors. These mark an instrument whose history cannot be
// obtained. They stop the affected instrument, never the whole request:
// services catch them at the fetch boundary, log, and continue with the
// remaining instruments.
var (
	// ErrNoHistory indicates the provider has no usable price points for
	// the instrument in the requested window.
	ErrNoHistory = errors.New("no price history for requested window")
)

// Validation errors for the request boundary.
var (
	// ErrInvalidPeriod indicates the period selector is not one of
	// 1m, 3m, 6m, 1y, ytd, all.
	ErrInvalidPeriod = errors.New("invalid period selector")

	// ErrInvalidSymbol indicates an empty or malformed instrument symbol.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrNegativeQuantity indicates a holding with quantity below zero.
	ErrNegativeQuantity = errors.New("quantity cannot be negative")

	// ErrNegativeCost indicates a holding with average cost below zero.
	ErrNegativeCost = errors.New("average cost cannot be negative")

	// ErrFutureAcquisition indicates a holding acquired after today.
	ErrFutureAcquisition = errors.New("acquisition date cannot be in the future")
)

// Store errors for the local price cache.
var (
	// ErrNotCached indicates the price store does not cover the requested
	// symbol and window. Callers fall through to the upstream source.
	ErrNotCached = errors.New("price history not cached")
)
