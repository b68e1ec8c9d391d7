package observe

import "context"

// Sink receives diagnostic attachments from validation and capture.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Attach is fire-and-forget; implementations must not
//   panic, and callers ignore any failure.
type Sink interface {
	Attach(label string, payload []byte)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(label string, payload []byte)

// Attach calls f, swallowing any panic so a misbehaving sink can
// never fail the call pipeline.
func (f SinkFunc) Attach(label string, payload []byte) {
	defer func() { _ = recover() }()
	f(label, payload)
}

// NopSink discards all attachments.
type NopSink struct{}

// Attach does nothing.
func (NopSink) Attach(label string, payload []byte) {}

// LogSink writes attachments to a Logger at debug level.
type LogSink struct {
	Logger Logger
}

// Attach logs the attachment, truncating oversized payloads.
func (s LogSink) Attach(label string, payload []byte) {
	if s.Logger == nil {
		return
	}
	const maxLogged = 4096
	body := payload
	if len(body) > maxLogged {
		body = body[:maxLogged]
	}
	s.Logger.Debug(context.Background(), "attachment",
		Field{Key: "label", Value: label},
		Field{Key: "size", Value: len(payload)},
		Field{Key: "payload", Value: string(body)},
	)
}

var (
	_ Sink = SinkFunc(nil)
	_ Sink = NopSink{}
	_ Sink = LogSink{}
)
