package broker

import "errors"

var (
	// ErrNoMessage indicates that no message arrived within the poll
	// timeout.
	ErrNoMessage = errors.New("broker: no message available")

	// ErrNoMatch indicates that ConsumeUntil hit its timeout or message
	// limit before any message satisfied the predicate.
	ErrNoMatch = errors.New("broker: no matching message before limits")

	// ErrClosed indicates an operation on a closed broker connection.
	ErrClosed = errors.New("broker: connection closed")
)
