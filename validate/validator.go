package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/probelabs/apiprobe/observe"
	"github.com/probelabs/apiprobe/transport"
)

// Validator checks one normalized result.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Ownership: Validate never mutates the result.
// - Errors: a failing check is reported through the Outcome, not an
//   error; only Run turns hard failures into errors.
type Validator interface {
	// Name returns a unique identifier for this validator.
	Name() string

	// Validate checks the result and returns a fresh outcome.
	Validate(result *transport.Result) Outcome
}

// hardMarker is implemented by validators whose failures are terminal
// for the call rather than merely reported.
type hardMarker interface {
	HardFail() bool
}

// Run executes validators in order and merges their outcomes. When a
// validator marked hard fails, Run still finishes merging and returns
// ErrValidation carrying the violations, so the caller can capture
// the result before surfacing the failure. Composites are flattened
// so that only the member that actually failed decides terminality.
func Run(result *transport.Result, validators ...Validator) (Outcome, error) {
	merged, hardFailed := run(result, validators)
	if hardFailed {
		return merged, fmt.Errorf("%w: %s", ErrValidation, strings.Join(merged.Violations, "; "))
	}
	return merged, nil
}

func run(result *transport.Result, validators []Validator) (Outcome, bool) {
	merged := Pass()
	hardFailed := false

	for _, v := range validators {
		if c, ok := v.(*Composite); ok {
			sub, subHard := run(result, c.Members)
			merged = merged.Merge(sub)
			hardFailed = hardFailed || subHard
			continue
		}

		outcome := v.Validate(result)
		merged = merged.Merge(outcome)
		if !outcome.Passed {
			if h, ok := v.(hardMarker); ok && h.HardFail() {
				hardFailed = true
			}
		}
	}
	return merged, hardFailed
}

// Status checks the result's status against an expected set.
type Status struct {
	// Expect lists acceptable statuses. Empty means any 2xx (or a
	// successful publish outcome).
	Expect []int

	// Hard makes a failure terminal for the call.
	Hard bool
}

// Name returns "status".
func (s Status) Name() string { return "status" }

// HardFail reports whether failures are terminal.
func (s Status) HardFail() bool { return s.Hard }

// Validate checks the status.
func (s Status) Validate(result *transport.Result) Outcome {
	if len(s.Expect) == 0 {
		if result.OK() {
			return Pass()
		}
		return Fail(fmt.Sprintf("unexpected status %d", result.Status))
	}
	for _, want := range s.Expect {
		if result.Status == want {
			return Pass()
		}
	}
	return Fail(fmt.Sprintf("status %d not in expected set %v", result.Status, s.Expect))
}

// Model strict-decodes the result body into T, catching unknown
// fields and type mismatches. An optional Check inspects the decoded
// value for structural constraints the type system cannot express.
type Model[T any] struct {
	// Check returns violations for the decoded value. Optional.
	Check func(T) []string
}

// Name returns "model".
func (Model[T]) Name() string { return "model" }

// Validate decodes the body into T.
func (m Model[T]) Validate(result *transport.Result) Outcome {
	if len(result.Body) == 0 {
		return Fail("response body is empty")
	}

	var value T
	dec := json.NewDecoder(bytes.NewReader(result.Body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&value); err != nil {
		return Fail(fmt.Sprintf("body does not match model: %v", err))
	}

	if m.Check != nil {
		if violations := m.Check(value); len(violations) > 0 {
			return Fail(violations...)
		}
	}
	return Pass()
}

// Attach forwards the result body to the report sink. It always
// passes: attachment is diagnostics, not validation.
type Attach struct {
	// Sink receives the attachment. Nil disables the step.
	Sink observe.Sink

	// Label names the attachment. Default: "response-body".
	Label string
}

// Name returns "attach".
func (a Attach) Name() string { return "attach" }

// Validate attaches the body and passes unconditionally.
func (a Attach) Validate(result *transport.Result) Outcome {
	if a.Sink != nil {
		label := a.Label
		if label == "" {
			label = "response-body"
		}
		a.attach(label, result.Body)
	}
	return Pass()
}

// attach isolates sink panics from the chain.
func (a Attach) attach(label string, payload []byte) {
	defer func() { _ = recover() }()
	a.Sink.Attach(label, payload)
}

// Composite runs a configured subset of validators and merges their
// outcomes: Passed is the AND of all members, Violations the
// concatenation in member order.
type Composite struct {
	Members []Validator
}

// NewComposite creates a composite over the given members.
func NewComposite(members ...Validator) *Composite {
	return &Composite{Members: members}
}

// Add appends a member and returns the composite for chaining.
func (c *Composite) Add(v Validator) *Composite {
	c.Members = append(c.Members, v)
	return c
}

// Name returns "composite".
func (c *Composite) Name() string { return "composite" }

// Validate merges all member outcomes.
func (c *Composite) Validate(result *transport.Result) Outcome {
	merged := Pass()
	for _, v := range c.Members {
		merged = merged.Merge(v.Validate(result))
	}
	return merged
}

// Ensure implementations satisfy Validator
var (
	_ Validator = Status{}
	_ Validator = Attach{}
	_ Validator = (*Composite)(nil)
)
