// Package validate runs normalized results through an ordered chain
// of independent checks: status, JSON Schema, structural model, and a
// report-sink attachment step that never fails the chain. Each check
// produces a fresh Outcome; the composite merges member outcomes in
// order. Schema resolution prefers a version-scoped definition and
// falls back to the unscoped one; a schema missing on both paths is a
// configuration error, never a silently skipped check.
package validate
