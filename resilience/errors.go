package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrRetriesExhausted is returned when max retry attempts are
	// exhausted; it wraps the last observed failure.
	ErrRetriesExhausted = errors.New("resilience: max retries exhausted")
)
