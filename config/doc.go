// Package config loads harness settings from the environment and
// resolves API version details.
//
// Settings is an immutable snapshot: Load reads APIPROBE_* variables
// once, applies defaults, expands ${VAR} references in values, and
// validates the result. Tests receive the snapshot by value so nothing
// mutates shared state mid-run.
//
// The version Registry centralizes per-version path prefixes and
// endpoint overrides, plus the default version for each target
// environment, so tests never hard-code versioned paths.
package config
