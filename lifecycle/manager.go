package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// CloseFunc releases one resource.
type CloseFunc func(ctx context.Context) error

// OpenFunc creates a resource and returns its release function. A nil
// CloseFunc is allowed for resources that need no release.
type OpenFunc func(ctx context.Context) (any, CloseFunc, error)

// ErrManagerClosed indicates an acquisition after Close.
var ErrManagerClosed = errors.New("lifecycle: manager closed")

type entry struct {
	name  string
	value any
	close CloseFunc
}

// Manager memoizes named resources shared by one worker.
//
// Contract:
// - Concurrency: safe for concurrent use; open runs at most once per
//   name even under racing callers.
// - Close releases resources in reverse open order and reports every
//   release error joined together.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   []string
	closed  bool
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{entries: make(map[string]*entry)}
}

// Shared returns the resource registered under name, opening it on
// first use. The open callback runs under the manager lock so two
// racing callers never open the same resource twice.
func (m *Manager) Shared(ctx context.Context, name string, open OpenFunc) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}
	if e, ok := m.entries[name]; ok {
		return e.value, nil
	}

	value, release, err := open(ctx)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: open %s: %w", name, err)
	}
	m.entries[name] = &entry{name: name, value: value, close: release}
	m.order = append(m.order, name)
	return value, nil
}

// Close releases every resource in reverse open order. Safe to call
// more than once; later calls are no-ops.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	for i := len(m.order) - 1; i >= 0; i-- {
		e := m.entries[m.order[i]]
		if e.close == nil {
			continue
		}
		if err := e.close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("lifecycle: close %s: %w", e.name, err))
		}
	}
	m.entries = nil
	m.order = nil
	return errors.Join(errs...)
}

// Shared is the typed form of Manager.Shared. It fails when the
// resource registered under name has a different type than T.
func Shared[T any](ctx context.Context, m *Manager, name string, open func(ctx context.Context) (T, CloseFunc, error)) (T, error) {
	var zero T
	v, err := m.Shared(ctx, name, func(ctx context.Context) (any, CloseFunc, error) {
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
