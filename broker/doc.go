// Package broker publishes and consumes events through the same
// prepare, authenticate, send, validate, capture lifecycle that the
// client package applies to request/response calls.
//
// A Producer turns an Event into a transport.Call whose target is the
// topic, runs it through the lifecycle, and reports the publish as a
// transport.Result carrying OutcomeOK or OutcomeFailed. A Consumer
// polls a Source for messages and supports predicate-driven waits via
// ConsumeUntil.
//
// Concrete wire bindings live alongside the pipeline: AMQP connects to
// a RabbitMQ broker, and MemBroker provides an in-process broker for
// harness tests. Topic and GroupID derive namespaced names so parallel
// workers never share topics or consumer groups.
package broker
