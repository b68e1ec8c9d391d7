package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// ErrScopeClosed indicates an acquisition after the scope was closed.
var ErrScopeClosed = errors.New("lifecycle: scope closed")

type closer struct {
	name    string
	release CloseFunc
}

// Scope owns resources for a single test. Resources are released in
// reverse acquisition order exactly once, whether the test passes,
// fails, or panics.
type Scope struct {
	mu      sync.Mutex
	closers []closer
	closed  bool
}

// NewScope creates an empty Scope.
func NewScope() *Scope {
	return &Scope{}
}

// Acquire opens a resource and registers its release with the scope.
func (s *Scope) Acquire(ctx context.Context, name string, open OpenFunc) (any, error) {
	value, release, err := open(ctx)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: acquire %s: %w", name, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		// The scope closed while open was running. Release immediately
		// so nothing leaks past the test.
		if release != nil {
			if rerr := release(ctx); rerr != nil {
				return nil, errors.Join(ErrScopeClosed,
					fmt.Errorf("lifecycle: release %s: %w", name, rerr))
			}
		}
		return nil, ErrScopeClosed
	}
	s.closers = append(s.closers, closer{name: name, release: release})
	s.mu.Unlock()
	return value, nil
}

// Defer registers a release function without opening anything, for
// resources created outside the scope.
func (s *Scope) Defer(name string, release CloseFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closers = append(s.closers, closer{name: name, release: release})
}

// Close releases every resource in reverse acquisition order. Later
// calls are no-ops, so a release function never runs twice.
func (s *Scope) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if c.release == nil {
			continue
		}
		if err := c.release(ctx); err != nil {
			errs = append(errs, fmt.Errorf("lifecycle: release %s: %w", c.name, err))
		}
	}
	return errors.Join(errs...)
}

// Bind ties the scope to tb so Close runs during test cleanup. Cleanup
// runs on pass, failure, and panic, so bound resources cannot leak
// into the next test.
func (s *Scope) Bind(tb testing.TB) {
	tb.Helper()
	tb.Cleanup(func() {
		if err := s.Close(context.Background()); err != nil {
			tb.Errorf("scope close: %v", err)
		}
	})
}

// Acquire is the typed form of Scope.Acquire.
func Acquire[T any](ctx context.Context, s *Scope, name string, open func(ctx context.Context) (T, CloseFunc, error)) (T, error) {
	var zero T
	v, err := s.Acquire(ctx, name, func(ctx context.Context) (any, CloseFunc, error) {
		value, release, err := open(ctx)
		return value, release, err
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("lifecycle: resource %s has type %T, not %T", name, v, zero)
	}
	return typed, nil
}
