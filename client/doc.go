// Package client implements the request/response instantiation of the
// call lifecycle: prepare, authenticate, send, validate, capture. The
// pipeline is fixed; only the send step is transport-specific, and
// the synchronous Do and asynchronous Go entry points share every
// other step so their outcomes are indistinguishable apart from
// timing.
package client
