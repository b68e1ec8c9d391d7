// Package lifecycle manages test resource ownership across the two
// scopes a parallel harness needs.
//
// A Manager holds worker-shared resources such as broker connections
// and producers: the first caller opens a resource under a name, later
// callers receive the same instance, and Close releases everything in
// reverse open order when the worker shuts down.
//
// A Scope holds per-test resources such as consumers. Every acquired
// resource is released exactly once when the scope closes, regardless
// of how the test exits. Bind ties a scope to testing cleanup so
// release runs on pass, failure, and panic alike.
package lifecycle
