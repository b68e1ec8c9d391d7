package transport

// State tracks a call's progress through the fixed lifecycle.
// Within one execution unit the states advance strictly in order;
// StateFailed is the absorbing state reachable from any step.
type State int

const (
	StatePrepared State = iota
	StateAuthenticated
	StateSent
	StateValidated
	StateCaptured
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePrepared:
		return "prepared"
	case StateAuthenticated:
		return "authenticated"
	case StateSent:
		return "sent"
	case StateValidated:
		return "validated"
	case StateCaptured:
		return "captured"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
