// Package capture holds the most recent call/result pair for one
// execution unit, for failure-time diagnostics. A Store belongs to
// exactly one unit and is threaded explicitly through context.Context
// rather than looked up from an ambient runtime mechanism, so writes
// never contend on a lock shared across units.
package capture
