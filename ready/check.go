package ready

import (
	"context"
	"fmt"

	"github.com/probelabs/apiprobe/transport"
)

// Check probes one dependency of the suite.
//
// Contract:
// - Concurrency: Probe may be called concurrently with itself.
// - Errors: a nil return means the dependency is ready.
type Check interface {
	// Name identifies the dependency in wait errors and logs.
	Name() string

	// Probe returns nil when the dependency is ready.
	Probe(ctx context.Context) error
}

// CheckFunc adapts a function to the Check interface.
type CheckFunc struct {
	name string
	fn   func(ctx context.Context) error
}

// NewCheckFunc creates a CheckFunc.
func NewCheckFunc(name string, fn func(ctx context.Context) error) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

// Name returns the check name.
func (f *CheckFunc) Name() string { return f.name }

// Probe calls fn.
func (f *CheckFunc) Probe(ctx context.Context) error { return f.fn(ctx) }

// Endpoint builds a check that sends a GET through t and treats any
// 2xx status as ready. Target is usually the health or root endpoint
// of the API under test.
func Endpoint(name string, t transport.Transport, target string) Check {
	return NewCheckFunc(name, func(ctx context.Context) error {
		result, err := t.Send(ctx, &transport.Call{Method: "GET", Target: target})
		if err != nil {
			return fmt.Errorf("probe %s: %w", target, err)
		}
		if !result.OK() {
			return fmt.Errorf("probe %s: status %d", target, result.Status)
		}
		return nil
	})
}
