// Package transport defines the normalized wire model shared by every
// transport family: the outbound Call, the inbound Result, the per-call
// lifecycle states, and the narrow Transport contract a concrete send
// implementation must satisfy. The package is deliberately free of any
// HTTP or broker specifics so that auth, retry, validation, and capture
// can operate uniformly over both.
package transport
