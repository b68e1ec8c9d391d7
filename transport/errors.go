package transport

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// Sentinel errors for transport operations.
var (
	// ErrTransport wraps network/protocol failures from a send.
	ErrTransport = errors.New("transport: send failed")

	// ErrTimeout is returned when a call exceeds its budget.
	ErrTimeout = errors.New("transport: deadline exceeded")
)

// IsTimeout reports whether err represents an exceeded call budget,
// from either the sentinel or an underlying context deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsConnectionRefused reports whether err is a connection-refused
// failure, i.e. the call never reached the peer. Such failures are
// safe to retry even for non-idempotent operations because no bytes
// were sent.
func IsConnectionRefused(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
