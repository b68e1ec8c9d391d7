package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/probelabs/apiprobe/transport"
)

func TestTimeout_CompletesWithinBudget(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})

	result, err := to.Execute(context.Background(), func(ctx context.Context) (*transport.Result, error) {
		return &transport.Result{Status: 200}, nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if result.Status != 200 {
		t.Errorf("Status = %d, want 200", result.Status)
	}
}

func TestTimeout_Expires(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: 10 * time.Millisecond})

	_, err := to.Execute(context.Background(), func(ctx context.Context) (*transport.Result, error) {
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
		}
		return &transport.Result{Status: 200}, nil
	})

	if !errors.Is(err, transport.ErrTimeout) {
		t.Errorf("Execute() error = %v, want transport.ErrTimeout", err)
	}
	if !transport.IsTimeout(err) {
		t.Error("IsTimeout() = false for expired budget")
	}
}

func TestTimeout_DefaultBudget(t *testing.T) {
	to := NewTimeout(TimeoutConfig{})
	if to.Config().Timeout != 30*time.Second {
		t.Errorf("default Timeout = %v, want 30s", to.Config().Timeout)
	}
}
