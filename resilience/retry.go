package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/probelabs/apiprobe/transport"
)

// Predicate decides whether a call outcome is worth retrying. Exactly
// one of result and err is meaningful per invocation: err is non-nil
// for classified failures, result for completed sends.
type Predicate func(result *transport.Result, err error) bool

// Default statuses treated as transient server failures.
var defaultRetryStatuses = []int{500, 502, 503, 504}

// RetryTransient is the default predicate: transport errors,
// timeouts, and transient 5xx statuses are retryable.
func RetryTransient(result *transport.Result, err error) bool {
	if err != nil {
		return transport.IsTimeout(err) || transport.IsConnectionRefused(err) ||
			errorsIsTransport(err)
	}
	return statusIn(result, defaultRetryStatuses)
}

// RetryStatuses builds a predicate marking only the given statuses
// retryable, alongside transport-level errors.
func RetryStatuses(statuses ...int) Predicate {
	return func(result *transport.Result, err error) bool {
		if err != nil {
			return transport.IsTimeout(err) || transport.IsConnectionRefused(err) ||
				errorsIsTransport(err)
		}
		return statusIn(result, statuses)
	}
}

// RetryConnectionOnly marks only connection-refused failures
// retryable. This is the safe predicate for non-idempotent
// operations: such a failure happens before any bytes were sent, so
// no partial effect can be duplicated.
func RetryConnectionOnly(result *transport.Result, err error) bool {
	return err != nil && transport.IsConnectionRefused(err)
}

// Policy configures the retry behavior. A Policy is an immutable
// configuration value attached to a call site at setup time.
type Policy struct {
	// MaxAttempts is the maximum number of attempts (including the
	// first). Default: 3.
	MaxAttempts int

	// BackoffBase is the delay before the first retry.
	// Default: 100ms
	BackoffBase time.Duration

	// Multiplier is the exponential backoff multiplier.
	// Default: 2.0
	Multiplier float64

	// MaxDelay caps the delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Jitter adds up to 25% randomness to delays to prevent
	// synchronized retries across workers. Default: false.
	Jitter bool

	// RetryIf decides retryable vs terminal outcomes.
	// Default: RetryTransient.
	RetryIf Predicate

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, result *transport.Result, err error, delay time.Duration)
}

// Retry implements bounded retry with exponential backoff.
type Retry struct {
	policy Policy
}

// NewRetry creates a retry wrapper from a policy.
func NewRetry(policy Policy) *Retry {
	// Apply defaults
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}
	if policy.BackoffBase <= 0 {
		policy.BackoffBase = 100 * time.Millisecond
	}
	if policy.Multiplier <= 0 {
		policy.Multiplier = 2.0
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = 30 * time.Second
	}
	if policy.RetryIf == nil {
		policy.RetryIf = RetryTransient
	}

	return &Retry{policy: policy}
}

// Policy returns the retry configuration.
func (r *Retry) Policy() Policy {
	return r.policy
}

// Execute runs the operation with retry logic. A terminal outcome
// (not retryable per the predicate) propagates immediately; a
// retryable one is reattempted after backoff until attempts run out,
// at which point the last failure is returned wrapped in
// ErrRetriesExhausted. The last produced result, if any, accompanies
// the error so callers can still capture it.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) (*transport.Result, error)) (*transport.Result, error) {
	var (
		lastResult *transport.Result
		lastErr    error
	)

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		result, err := op(ctx)

		if err == nil && !r.policy.RetryIf(result, nil) {
			return result, nil
		}
		if err != nil && !r.policy.RetryIf(nil, err) {
			return result, err
		}

		lastResult, lastErr = result, err

		if attempt >= r.policy.MaxAttempts {
			break
		}

		delay := r.calculateDelay(attempt)
		if r.policy.OnRetry != nil {
			r.policy.OnRetry(attempt, result, err, delay)
		}

		select {
		case <-ctx.Done():
			return lastResult, ctx.Err()
		case <-time.After(delay):
		}
	}

	if lastErr != nil {
		return lastResult, fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
	}
	return lastResult, fmt.Errorf("%w: status %d after %d attempts",
		ErrRetriesExhausted, lastResult.Status, r.policy.MaxAttempts)
}

func (r *Retry) calculateDelay(attempt int) time.Duration {
	multiplier := math.Pow(r.policy.Multiplier, float64(attempt-1))
	delay := time.Duration(float64(r.policy.BackoffBase) * multiplier)

	if delay > r.policy.MaxDelay {
		delay = r.policy.MaxDelay
	}

	if r.policy.Jitter {
		// Up to 25% jitter. Delays under 4ns leave no room to jitter.
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		if n := int64(delay / 4); n > 0 {
			delay += time.Duration(rand.Int64N(n))
		}
	}

	return delay
}

func statusIn(result *transport.Result, statuses []int) bool {
	if result == nil {
		return false
	}
	for _, s := range statuses {
		if result.Status == s {
			return true
		}
	}
	return false
}

func errorsIsTransport(err error) bool {
	return errors.Is(err, transport.ErrTransport)
}
