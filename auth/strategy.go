package auth

import (
	"context"

	"github.com/probelabs/apiprobe/transport"
)

// Strategy attaches credential material to an outbound call.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Ownership: Apply returns a new call; the input is never mutated.
// - Errors: Apply returns an error wrapping ErrAcquireFailed when
//   credentials cannot be produced.
type Strategy interface {
	// Name returns a unique identifier for this strategy.
	Name() string

	// Apply returns a copy of the call with credentials attached.
	Apply(ctx context.Context, call *transport.Call) (*transport.Call, error)
}

// StaticToken attaches a fixed bearer token.
type StaticToken struct {
	// Token is the bearer token value.
	Token string

	// HeaderName overrides the target header. Default: "Authorization".
	HeaderName string
}

// Name returns "static_token".
func (s StaticToken) Name() string { return "static_token" }

// Apply sets "Authorization: Bearer <token>" on a copy of the call.
func (s StaticToken) Apply(_ context.Context, call *transport.Call) (*transport.Call, error) {
	header := s.HeaderName
	if header == "" {
		header = "Authorization"
	}
	return call.WithHeader(header, "Bearer "+s.Token), nil
}

// APIKey attaches a fixed key under a custom header.
type APIKey struct {
	// Key is the API key value.
	Key string

	// HeaderName is the header carrying the key. Default: "X-API-Key".
	HeaderName string
}

// Name returns "api_key".
func (a APIKey) Name() string { return "api_key" }

// Apply sets the key header on a copy of the call.
func (a APIKey) Apply(_ context.Context, call *transport.Call) (*transport.Call, error) {
	header := a.HeaderName
	if header == "" {
		header = "X-API-Key"
	}
	return call.WithHeader(header, a.Key), nil
}

// None is the no-credential strategy; Apply returns an untouched copy.
type None struct{}

// Name returns "none".
func (None) Name() string { return "none" }

// Apply returns a copy of the call unchanged.
func (None) Apply(_ context.Context, call *transport.Call) (*transport.Call, error) {
	return call.Clone(), nil
}

// Ensure implementations satisfy Strategy
var (
	_ Strategy = StaticToken{}
	_ Strategy = APIKey{}
	_ Strategy = None{}
)
