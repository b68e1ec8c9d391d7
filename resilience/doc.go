// Package resilience wraps transport operations with bounded retry,
// exponential backoff, and per-call timeouts. The wrapper is
// transport-agnostic: it sees only the normalized result or the
// classified error, and a configurable predicate decides which
// outcomes are worth another attempt.
package resilience
