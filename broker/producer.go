package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/probelabs/apiprobe/auth"
	"github.com/probelabs/apiprobe/capture"
	"github.com/probelabs/apiprobe/observe"
	"github.com/probelabs/apiprobe/resilience"
	"github.com/probelabs/apiprobe/transport"
	"github.com/probelabs/apiprobe/validate"
)

// ProducerConfig configures a Producer. Zero values get sensible
// defaults from NewProducer.
type ProducerConfig struct {
	// DefaultTopic is used when an Event carries no topic.
	DefaultTopic string

	// Headers are stamped on every published event.
	Headers map[string]string

	// WorkerID is recorded in the X-Worker-ID header and in trace
	// attributes.
	WorkerID string

	// Timeout bounds a single publish attempt. Defaults to 30s.
	Timeout time.Duration

	// Auth is applied to the prepared call before sending. Defaults to
	// auth.None.
	Auth auth.Strategy

	// Retry, when set, re-sends on transient failures.
	Retry *resilience.Retry

	// Validators run against the publish result.
	Validators []validate.Validator

	// Transport performs the wire-level publish. Required.
	Transport transport.Transport

	Logger observe.Logger
	Tracer observe.Tracer
}

// Producer runs outgoing events through the full publish lifecycle.
//
// Contract:
// - Concurrency: safe for concurrent use by multiple goroutines.
// - Capture: the prepared call and result are recorded in the
//   capture.Store carried by ctx, on success and on failure.
type Producer struct {
	config ProducerConfig
}

// Delivery is the terminal record of one publish.
type Delivery struct {
	Call    *transport.Call
	Result  *transport.Result
	Outcome validate.Outcome
	State   transport.State
}

// NewProducer creates a Producer with defaults applied.
func NewProducer(config ProducerConfig) *Producer {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Auth == nil {
		config.Auth = auth.None{}
	}
	if config.Logger == nil {
		config.Logger = observe.NewNoopLogger()
	}
	if config.Tracer == nil {
		config.Tracer = observe.NewNoopTracer()
	}
	return &Producer{config: config}
}

// PublishJSON marshals v and publishes it to the producer's default
// topic.
func (p *Producer) PublishJSON(ctx context.Context, v any) (*Delivery, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("broker: marshal event body: %w", err)
	}
	return p.Publish(ctx, Event{Body: body})
}

// Publish runs event through prepare, authenticate, send, validate,
// and capture. A send failure or a hard validation failure returns an
// error after the capture entry is recorded.
func (p *Producer) Publish(ctx context.Context, event Event) (*Delivery, error) {
	del := &Delivery{State: transport.StatePrepared}

	call, err := p.prepare(event)
	if err != nil {
		del.State = transport.StateFailed
		return del, err
	}
	del.Call = call

	ctx, span := p.config.Tracer.StartSpan(ctx, observe.CallMeta{
		Transport: "broker",
		Operation: "publish",
		Target:    call.Target,
		WorkerID:  p.config.WorkerID,
	})

	call, err = p.config.Auth.Apply(ctx, call)
	if err != nil {
		return p.fail(ctx, span, del, err)
	}
	del.Call = call
	del.State = transport.StateAuthenticated

	result, err := p.send(ctx, call)
	del.Result = result
	if err != nil {
		return p.fail(ctx, span, del, err)
	}
	del.State = transport.StateSent

	outcome, err := validate.Run(result, p.config.Validators...)
	del.Outcome = outcome
	if err != nil {
		return p.fail(ctx, span, del, err)
	}
	del.State = transport.StateValidated

	p.record(ctx, del, nil)
	del.State = transport.StateCaptured

	p.config.Logger.Debug(ctx, "event published",
		observe.Field{Key: "topic", Value: call.Target},
		observe.Field{Key: "elapsed_ms", Value: result.Elapsed.Milliseconds()},
		observe.Field{Key: "passed", Value: outcome.Passed},
	)
	p.config.Tracer.EndSpan(span, nil)
	del.State = transport.StateCompleted
	return del, nil
}

func (p *Producer) prepare(event Event) (*transport.Call, error) {
	topic := event.Topic
	if topic == "" {
		topic = p.config.DefaultTopic
	}
	if topic == "" {
		return nil, fmt.Errorf("broker: no topic for event and no default topic configured")
	}

	contentType := event.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	headers := make(map[string]string, len(p.config.Headers)+len(event.Headers)+4)
	for k, v := range p.config.Headers {
		headers[k] = v
	}
	for k, v := range event.Headers {
		headers[k] = v
	}
	if _, ok := headers[HeaderTimestamp]; !ok {
		headers[HeaderTimestamp] = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	if _, ok := headers[HeaderContentType]; !ok {
		headers[HeaderContentType] = contentType
	}
	if event.Key != "" {
		headers[HeaderKey] = event.Key
	}
	if p.config.WorkerID != "" {
		headers[HeaderWorker] = p.config.WorkerID
	}

	return &transport.Call{
		Method:  "PUBLISH",
		Target:  topic,
		Headers: headers,
		Body:    event.Body,
		Timeout: p.config.Timeout,
	}, nil
}

func (p *Producer) send(ctx context.Context, call *transport.Call) (*transport.Result, error) {
	op := func(ctx context.Context) (*transport.Result, error) {
		return resilience.ExecuteWithTimeout(ctx, call.Timeout, func(ctx context.Context) (*transport.Result, error) {
			return p.config.Transport.Send(ctx, call)
		})
	}
	if p.config.Retry != nil {
		return p.config.Retry.Execute(ctx, op)
	}
	return op(ctx)
}

func (p *Producer) fail(ctx context.Context, span trace.Span, del *Delivery, err error) (*Delivery, error) {
	p.record(ctx, del, err)
	p.config.Logger.Warn(ctx, "publish failed",
		observe.Field{Key: "topic", Value: del.Call.Target},
		observe.Field{Key: "error", Value: err.Error()},
	)
	p.config.Tracer.EndSpan(span, err)
	del.State = transport.StateFailed
	return del, err
}

func (p *Producer) record(ctx context.Context, del *Delivery, err error) {
	if store := capture.FromContext(ctx); store != nil {
		store.Record(del.Call, del.Result, err)
	}
}
