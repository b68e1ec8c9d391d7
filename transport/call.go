package transport

import (
	"context"
	"time"
)

// Call is the normalized description of one attempt to reach an
// external system. A Call is treated as immutable once built: steps
// that need to modify it (authentication, header injection) use the
// With* helpers, which return a copy and leave the receiver untouched.
type Call struct {
	// Method is the HTTP method or broker operation (e.g. "PUBLISH").
	Method string

	// Target is the full URL or the topic/queue identifier.
	Target string

	// Headers carries HTTP headers or message metadata.
	Headers map[string]string

	// Body is the serialized payload, nil when the call has none.
	Body []byte

	// Timeout is the per-call budget. Zero means the caller's
	// context deadline (if any) is the only limit.
	Timeout time.Duration
}

// Clone returns a deep copy of the call with its own header map.
func (c *Call) Clone() *Call {
	headers := make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		headers[k] = v
	}
	body := make([]byte, len(c.Body))
	copy(body, c.Body)

	return &Call{
		Method:  c.Method,
		Target:  c.Target,
		Headers: headers,
		Body:    body,
		Timeout: c.Timeout,
	}
}

// WithHeader returns a copy of the call with the header set.
func (c *Call) WithHeader(key, value string) *Call {
	out := c.Clone()
	out.Headers[key] = value
	return out
}

// Header returns the value for a header key, or empty string.
func (c *Call) Header(key string) string {
	if c.Headers == nil {
		return ""
	}
	return c.Headers[key]
}

// Publish outcome values carried in Result.Status by publish/consume
// transports, which have no wire status code.
const (
	OutcomeFailed = 0
	OutcomeOK     = 1
)

// Result is the normalized outcome of a call. It is produced by the
// concrete transport send step and never mutated afterwards.
type Result struct {
	// Status is the numeric HTTP status for request/response
	// transports, or OutcomeOK/OutcomeFailed for publish transports.
	Status int

	// Headers carries response headers or result metadata.
	Headers map[string]string

	// Body is the raw response payload.
	Body []byte

	// Elapsed is the wall-clock duration of the send step.
	Elapsed time.Duration

	// Time is when the result was produced.
	Time time.Time
}

// Header returns the value for a result header key, or empty string.
func (r *Result) Header(key string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers[key]
}

// OK reports whether the result carries a success outcome:
// a 2xx status for request/response, OutcomeOK for publish.
func (r *Result) OK() bool {
	if r.Status == OutcomeOK {
		return true
	}
	return r.Status >= 200 && r.Status < 300
}

// Transport is the contract a concrete send implementation supplies.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Send must honor cancellation/deadlines.
// - Errors: network/protocol failures are returned wrapped in
//   ErrTransport (or ErrTimeout on deadline), never panicked.
type Transport interface {
	Send(ctx context.Context, call *Call) (*Result, error)
}

// SendFunc adapts a function to the Transport interface.
type SendFunc func(ctx context.Context, call *Call) (*Result, error)

// Send calls f.
func (f SendFunc) Send(ctx context.Context, call *Call) (*Result, error) {
	return f(ctx, call)
}
