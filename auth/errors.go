package auth

import "errors"

// Sentinel errors for credential attachment.
var (
	// ErrAcquireFailed is returned when token acquisition or refresh
	// fails. It is fatal for the call and never retried; no call
	// proceeds with a stale or absent token.
	ErrAcquireFailed = errors.New("auth: token acquisition failed")

	// ErrNoSource is returned when a refreshable strategy has no
	// token source configured.
	ErrNoSource = errors.New("auth: token source not configured")
)
