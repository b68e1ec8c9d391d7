package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/probelabs/apiprobe/auth"
	"github.com/probelabs/apiprobe/capture"
	"github.com/probelabs/apiprobe/observe"
	"github.com/probelabs/apiprobe/resilience"
	"github.com/probelabs/apiprobe/transport"
	"github.com/probelabs/apiprobe/validate"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the root URL for the API under test. Required.
	BaseURL string

	// Version selects the API version; calls are prefixed with
	// "api/{version}". Empty uses the legacy unprefixed path.
	Version string

	// Headers are merged into every call.
	Headers map[string]string

	// WorkerID, when set, is stamped as X-Worker-ID on every call.
	WorkerID string

	// Timeout is the default per-call budget. Default: 30s.
	Timeout time.Duration

	// Auth attaches credentials. Default: auth.None.
	Auth auth.Strategy

	// Retry, when set, wraps the send step.
	Retry *resilience.Retry

	// Validators run in order against every result.
	Validators []validate.Validator

	// Transport performs the actual send. Default: NewHTTPTransport().
	Transport transport.Transport

	// Logger receives call-level log entries. Default: noop.
	Logger observe.Logger

	// Tracer spans each call. Default: noop.
	Tracer observe.Tracer
}

// Client drives calls through the fixed lifecycle.
type Client struct {
	config Config
}

// New creates a client, applying defaults.
func New(config Config) *Client {
	// Apply defaults
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Auth == nil {
		config.Auth = auth.None{}
	}
	if config.Transport == nil {
		config.Transport = NewHTTPTransport(HTTPConfig{})
	}
	if config.Logger == nil {
		config.Logger = observe.NewNoopLogger()
	}
	if config.Tracer == nil {
		config.Tracer = observe.NewNoopTracer()
	}

	return &Client{config: config}
}

// Exchange is the normalized record of one completed call.
type Exchange struct {
	// Call is the authenticated call that reached the transport.
	Call *transport.Call

	// Result is the normalized outcome; nil when the call failed
	// before a result existed.
	Result *transport.Result

	// Outcome is the merged validation outcome.
	Outcome validate.Outcome

	// State is the lifecycle state the call ended in.
	State transport.State
}

// CallOption customizes one call.
type CallOption func(*callSpec) error

type callSpec struct {
	headers map[string]string
	query   url.Values
	body    []byte
	timeout time.Duration
}

// WithBody sets the raw call body.
func WithBody(body []byte) CallOption {
	return func(s *callSpec) error {
		s.body = body
		return nil
	}
}

// WithJSON marshals v as the call body and sets the content type.
func WithJSON(v any) CallOption {
	return func(s *callSpec) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshaling call body: %w", err)
		}
		s.body = data
		s.headers["Content-Type"] = "application/json"
		return nil
	}
}

// WithHeader sets a per-call header.
func WithHeader(key, value string) CallOption {
	return func(s *callSpec) error {
		s.headers[key] = value
		return nil
	}
}

// WithQuery adds a query parameter.
func WithQuery(key, value string) CallOption {
	return func(s *callSpec) error {
		s.query.Add(key, value)
		return nil
	}
}

// WithTimeout overrides the client's default call budget.
func WithTimeout(d time.Duration) CallOption {
	return func(s *callSpec) error {
		s.timeout = d
		return nil
	}
}

// Do executes the full lifecycle synchronously.
func (c *Client) Do(ctx context.Context, method, path string, opts ...CallOption) (*Exchange, error) {
	return c.do(ctx, method, path, opts)
}

// Async carries the outcome of an asynchronous call.
type Async struct {
	Exchange *Exchange
	Err      error
}

// Go executes the same lifecycle asynchronously. Only the waiting
// mechanics differ from Do; ordering and error semantics are
// identical.
func (c *Client) Go(ctx context.Context, method, path string, opts ...CallOption) <-chan Async {
	ch := make(chan Async, 1)
	go func() {
		ex, err := c.do(ctx, method, path, opts)
		ch <- Async{Exchange: ex, Err: err}
	}()
	return ch
}

// Get issues a GET call.
func (c *Client) Get(ctx context.Context, path string, opts ...CallOption) (*Exchange, error) {
	return c.Do(ctx, "GET", path, opts...)
}

// Post issues a POST call.
func (c *Client) Post(ctx context.Context, path string, opts ...CallOption) (*Exchange, error) {
	return c.Do(ctx, "POST", path, opts...)
}

// Put issues a PUT call.
func (c *Client) Put(ctx context.Context, path string, opts ...CallOption) (*Exchange, error) {
	return c.Do(ctx, "PUT", path, opts...)
}

// Patch issues a PATCH call.
func (c *Client) Patch(ctx context.Context, path string, opts ...CallOption) (*Exchange, error) {
	return c.Do(ctx, "PATCH", path, opts...)
}

// Delete issues a DELETE call.
func (c *Client) Delete(ctx context.Context, path string, opts ...CallOption) (*Exchange, error) {
	return c.Do(ctx, "DELETE", path, opts...)
}

// do runs the fixed pipeline. Capture happens on every exit path,
// success or failure, so the last exchange is always available for
// diagnostics.
func (c *Client) do(ctx context.Context, method, path string, opts []CallOption) (*Exchange, error) {
	ex := &Exchange{State: transport.StatePrepared}

	call, err := c.prepare(method, path, opts)
	if err != nil {
		ex.State = transport.StateFailed
		return ex, err
	}
	ex.Call = call

	meta := observe.CallMeta{
		Transport: "http",
		Operation: call.Method,
		Target:    call.Target,
		WorkerID:  c.config.WorkerID,
	}
	ctx, span := c.config.Tracer.StartSpan(ctx, meta)

	authed, err := c.config.Auth.Apply(ctx, call)
	if err != nil {
		return c.fail(ctx, span, ex, err)
	}
	ex.Call = authed
	ex.State = transport.StateAuthenticated

	result, err := c.send(ctx, authed)
	if result != nil {
		ex.Result = result
	}
	if err != nil {
		return c.fail(ctx, span, ex, err)
	}
	ex.State = transport.StateSent

	outcome, err := validate.Run(result, c.config.Validators...)
	ex.Outcome = outcome
	ex.State = transport.StateValidated
	if err != nil {
		return c.fail(ctx, span, ex, err)
	}

	c.record(ctx, ex, nil)
	ex.State = transport.StateCaptured

	c.config.Logger.Debug(ctx, "call completed",
		observe.Field{Key: "method", Value: call.Method},
		observe.Field{Key: "target", Value: call.Target},
		observe.Field{Key: "status", Value: result.Status},
		observe.Field{Key: "elapsed_ms", Value: result.Elapsed.Milliseconds()},
		observe.Field{Key: "passed", Value: outcome.Passed},
	)
	c.config.Tracer.EndSpan(span, nil)

	ex.State = transport.StateCompleted
	return ex, nil
}

// prepare builds the immutable call from caller intent. Versioned
// targets resolve to "{base}/api/{version}/{path}"; without a version
// the legacy "{base}/{path}" resolution applies.
func (c *Client) prepare(method, path string, opts []CallOption) (*transport.Call, error) {
	spec := &callSpec{
		headers: make(map[string]string),
		query:   url.Values{},
		timeout: c.config.Timeout,
	}
	for _, opt := range opts {
		if err := opt(spec); err != nil {
			return nil, err
		}
	}

	base := strings.TrimSuffix(c.config.BaseURL, "/")
	trimmed := strings.TrimPrefix(path, "/")
	var target string
	if c.config.Version != "" {
		target = fmt.Sprintf("%s/api/%s/%s", base, c.config.Version, trimmed)
	} else {
		target = fmt.Sprintf("%s/%s", base, trimmed)
	}
	if len(spec.query) > 0 {
		target += "?" + spec.query.Encode()
	}

	headers := make(map[string]string, len(c.config.Headers)+len(spec.headers)+1)
	for k, v := range c.config.Headers {
		headers[k] = v
	}
	if c.config.WorkerID != "" {
		headers["X-Worker-ID"] = c.config.WorkerID
	}
	for k, v := range spec.headers {
		headers[k] = v
	}

	return &transport.Call{
		Method:  strings.ToUpper(method),
		Target:  target,
		Headers: headers,
		Body:    spec.body,
		Timeout: spec.timeout,
	}, nil
}

// send runs the transport under the call budget, wrapped by the
// retry policy when one is configured.
func (c *Client) send(ctx context.Context, call *transport.Call) (*transport.Result, error) {
	budget := resilience.NewTimeout(resilience.TimeoutConfig{Timeout: call.Timeout})
	op := func(ctx context.Context) (*transport.Result, error) {
		return budget.Execute(ctx, func(ctx context.Context) (*transport.Result, error) {
			return c.config.Transport.Send(ctx, call)
		})
	}

	if c.config.Retry != nil {
		return c.config.Retry.Execute(ctx, op)
	}
	return op(ctx)
}

// fail records the partial exchange, closes the span, and surfaces
// the terminal error.
func (c *Client) fail(ctx context.Context, span trace.Span, ex *Exchange, err error) (*Exchange, error) {
	c.record(ctx, ex, err)
	c.config.Logger.Warn(ctx, "call failed",
		observe.Field{Key: "target", Value: ex.Call.Target},
		observe.Field{Key: "state", Value: ex.State.String()},
		observe.Field{Key: "error", Value: err.Error()},
	)
	c.config.Tracer.EndSpan(span, err)
	ex.State = transport.StateFailed
	return ex, err
}

// record writes into the unit's capture store, if the context
// carries one.
func (c *Client) record(ctx context.Context, ex *Exchange, err error) {
	if store := capture.FromContext(ctx); store != nil {
		store.Record(ex.Call, ex.Result, err)
	}
}
