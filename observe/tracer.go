package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CallMeta contains metadata about one outbound call for telemetry.
type CallMeta struct {
	Transport string // "http" or "broker"
	Operation string // HTTP method or broker operation
	Target    string // URL or topic
	WorkerID  string // executing worker (may be empty)
}

// SpanName returns the deterministic span name for this call.
// Format: probe.call.<transport>.<operation>
func (m CallMeta) SpanName() string {
	return "probe.call." + m.Transport + "." + m.Operation
}

// Tracer wraps OpenTelemetry tracing with call-scoped span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for one call execution.
	StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// NewNoopTracer returns a tracer whose spans record nothing.
func NewNoopTracer() Tracer {
	return &tracerImpl{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("probe.transport", meta.Transport),
		attribute.String("probe.operation", meta.Operation),
		attribute.String("probe.target", meta.Target),
	}
	if meta.WorkerID != "" {
		attrs = append(attrs, attribute.String("probe.worker", meta.WorkerID))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("probe.error", true))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

var _ Tracer = (*tracerImpl)(nil)
