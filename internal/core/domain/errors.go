// Package domain holds the closed type enumerations (offer types, outcomes,
// players, handicaps) and error kinds shared across the derivation core.
// Grounded on spec section 6/7 and, for the error-wrapping idiom, the
// teacher's internal/config (fmt.Errorf("...: %w", err)).
package domain

import "errors"

// Error kinds surfaced to callers. The core never aborts except on a
// programmer contract violation (a panic, not one of these).
var (
	ErrInvalidMarket    = errors.New("invalid market")
	ErrInvalidOffer     = errors.New("invalid offer")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrInvalidConfig    = errors.New("invalid config")
	ErrNumericalFailure = errors.New("numerical failure")
	ErrMissingOffer     = errors.New("missing offer")
)
