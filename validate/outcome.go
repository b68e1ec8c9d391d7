package validate

// Outcome is the result of one validation run. It is produced fresh
// by each validator invocation and never mutated afterwards; Merge
// returns a new value.
type Outcome struct {
	// Passed is true when every check held.
	Passed bool

	// Violations lists human-readable reasons, in check order.
	Violations []string
}

// Pass returns a passing outcome with no violations.
func Pass() Outcome {
	return Outcome{Passed: true}
}

// Fail returns a failing outcome with the given reasons.
func Fail(reasons ...string) Outcome {
	return Outcome{Passed: false, Violations: reasons}
}

// Merge combines two outcomes: Passed is the logical AND, Violations
// the concatenation in order.
func (o Outcome) Merge(other Outcome) Outcome {
	violations := make([]string, 0, len(o.Violations)+len(other.Violations))
	violations = append(violations, o.Violations...)
	violations = append(violations, other.Violations...)
	return Outcome{
		Passed:     o.Passed && other.Passed,
		Violations: violations,
	}
}
