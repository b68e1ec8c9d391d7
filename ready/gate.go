package ready

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/probelabs/apiprobe/observe"
)

// ErrNotReady indicates the wait budget was spent with at least one
// dependency still failing its probe.
var ErrNotReady = errors.New("ready: dependencies not ready")

// GateConfig configures a Gate.
type GateConfig struct {
	// Interval between poll rounds. Defaults to 500ms.
	Interval time.Duration

	// Timeout is the total wait budget. Defaults to 30s.
	Timeout time.Duration

	Logger observe.Logger
}

// Gate polls a set of checks until all pass.
type Gate struct {
	config GateConfig

	mu     sync.Mutex
	checks []Check
}

// NewGate creates a Gate with defaults applied.
func NewGate(config GateConfig, checks ...Check) *Gate {
	if config.Interval <= 0 {
		config.Interval = 500 * time.Millisecond
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Logger == nil {
		config.Logger = observe.NewNoopLogger()
	}
	return &Gate{config: config, checks: checks}
}

// Add registers another check.
func (g *Gate) Add(check Check) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checks = append(g.checks, check)
}

// Probe runs every check once, in parallel, and returns the failures
// keyed by check name. An empty map means everything is ready.
func (g *Gate) Probe(ctx context.Context) map[string]error {
	g.mu.Lock()
	checks := make([]Check, len(g.checks))
	copy(checks, g.checks)
	g.mu.Unlock()

	var mu sync.Mutex
	failures := make(map[string]error)

	eg, ctx := errgroup.WithContext(ctx)
	for _, check := range checks {
		check := check
		eg.Go(func() error {
			if err := check.Probe(ctx); err != nil {
				mu.Lock()
				failures[check.Name()] = err
				mu.Unlock()
			}
			return nil
		})
	}
	eg.Wait()
	return failures
}

// Wait polls until every check passes or the budget is spent. On
// timeout it returns ErrNotReady with the last failure per check.
func (g *Gate) Wait(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	var last map[string]error
	for {
		last = g.Probe(ctx)
		if len(last) == 0 {
			return nil
		}
		for name, err := range last {
			g.config.Logger.Debug(ctx, "dependency not ready",
				observe.Field{Key: "check", Value: name},
				observe.Field{Key: "error", Value: err.Error()},
			)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrNotReady, describe(last))
		case <-time.After(g.config.Interval):
		}
	}
}

func describe(failures map[string]error) string {
	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, failures[name]))
	}
	return strings.Join(parts, "; ")
}
