package resilience

import (
	"context"
	"time"

	"github.com/probelabs/apiprobe/transport"
)

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration for the operation.
	// Default: 30 seconds
	Timeout time.Duration
}

// Timeout wraps operations with a per-call budget. On expiry it
// returns transport.ErrTimeout so callers classify it uniformly with
// transport-level deadlines.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	// Apply defaults
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Timeout{config: config}
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

// Execute runs the operation with a timeout. The operation keeps
// running in its goroutine after expiry; its eventual outcome is
// discarded.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) (*transport.Result, error)) (*transport.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	type outcome struct {
		result *transport.Result
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := op(ctx)
		done <- outcome{result, err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, transport.ErrTimeout
		}
		return nil, ctx.Err()
	}
}

// ExecuteWithTimeout is a convenience function to run an operation
// with a one-off timeout.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) (*transport.Result, error)) (*transport.Result, error) {
	t := NewTimeout(TimeoutConfig{Timeout: timeout})
	return t.Execute(ctx, op)
}
