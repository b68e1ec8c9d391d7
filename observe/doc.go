// Package observe provides the harness's telemetry primitives: a
// structured JSON logger, an OpenTelemetry tracer scoped to call
// execution, and the report Sink that validation and capture use to
// attach diagnostic payloads. Sink attachment is fire-and-forget and
// never raises into the call pipeline.
package observe
