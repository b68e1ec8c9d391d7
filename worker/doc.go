// Package worker resolves the identity of the current parallel
// execution unit and derives the deterministic seed and namespace
// every other component uses for isolation. Resolution reads only the
// runner's parallelism signal; when no signal is available it falls
// back to a single fixed identity so serial runs behave identically.
package worker
