package validate

import (
	"errors"
	"reflect"
	"testing"

	"github.com/probelabs/apiprobe/observe"
	"github.com/probelabs/apiprobe/transport"
)

func TestOutcome_Merge(t *testing.T) {
	pass := Pass()
	fail := Fail("bad status")

	merged := pass.Merge(fail)
	if merged.Passed {
		t.Error("Passed = true, want false")
	}
	if !reflect.DeepEqual(merged.Violations, []string{"bad status"}) {
		t.Errorf("Violations = %v, want [bad status]", merged.Violations)
	}

	// Merge never mutates its inputs.
	if !pass.Passed || len(pass.Violations) != 0 {
		t.Error("Merge mutated the receiver")
	}
}

func TestOutcome_MergeOrdering(t *testing.T) {
	a := Fail("first")
	b := Fail("second")
	merged := a.Merge(b)
	want := []string{"first", "second"}
	if !reflect.DeepEqual(merged.Violations, want) {
		t.Errorf("Violations = %v, want %v", merged.Violations, want)
	}
}

func TestStatus_DefaultExpectsSuccess(t *testing.T) {
	if got := (Status{}).Validate(&transport.Result{Status: 201}); !got.Passed {
		t.Errorf("201 failed default status check: %v", got.Violations)
	}
	if got := (Status{}).Validate(&transport.Result{Status: 500}); got.Passed {
		t.Error("500 passed default status check")
	}
}

func TestStatus_ExpectedSet(t *testing.T) {
	s := Status{Expect: []int{200, 404}}
	if got := s.Validate(&transport.Result{Status: 404}); !got.Passed {
		t.Errorf("404 not accepted: %v", got.Violations)
	}
	if got := s.Validate(&transport.Result{Status: 201}); got.Passed {
		t.Error("201 accepted outside expected set")
	}
}

type userModel struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

func TestModel_Validate(t *testing.T) {
	m := Model[userModel]{}

	ok := m.Validate(&transport.Result{Body: []byte(`{"id":1,"email":"a@b.c"}`)})
	if !ok.Passed {
		t.Errorf("valid body failed: %v", ok.Violations)
	}

	unknown := m.Validate(&transport.Result{Body: []byte(`{"id":1,"email":"a","extra":true}`)})
	if unknown.Passed {
		t.Error("unknown field passed strict decode")
	}

	empty := m.Validate(&transport.Result{})
	if empty.Passed {
		t.Error("empty body passed model check")
	}
}

func TestModel_Check(t *testing.T) {
	m := Model[userModel]{
		Check: func(u userModel) []string {
			if u.Email == "" {
				return []string{"email is required"}
			}
			return nil
		},
	}

	got := m.Validate(&transport.Result{Body: []byte(`{"id":1,"email":""}`)})
	if got.Passed {
		t.Error("missing email passed structural check")
	}
	if !reflect.DeepEqual(got.Violations, []string{"email is required"}) {
		t.Errorf("Violations = %v", got.Violations)
	}
}

type passValidator struct{}

func (passValidator) Name() string                             { return "pass" }
func (passValidator) Validate(*transport.Result) Outcome       { return Pass() }

type failValidator struct{ reason string }

func (failValidator) Name() string                         { return "fail" }
func (v failValidator) Validate(*transport.Result) Outcome { return Fail(v.reason) }

func TestComposite_Merge(t *testing.T) {
	c := NewComposite(passValidator{}, failValidator{reason: "bad status"})

	got := c.Validate(&transport.Result{Status: 200})
	if got.Passed {
		t.Error("Passed = true, want false")
	}
	if !reflect.DeepEqual(got.Violations, []string{"bad status"}) {
		t.Errorf("Violations = %v, want [bad status]", got.Violations)
	}
}

func TestComposite_Add(t *testing.T) {
	c := NewComposite(passValidator{}).Add(failValidator{reason: "x"}).Add(failValidator{reason: "y"})
	got := c.Validate(&transport.Result{})
	if !reflect.DeepEqual(got.Violations, []string{"x", "y"}) {
		t.Errorf("Violations = %v, want [x y]", got.Violations)
	}
}

func TestRun_SoftFailureIsNotAnError(t *testing.T) {
	outcome, err := Run(&transport.Result{Status: 200}, failValidator{reason: "shape off"})
	if err != nil {
		t.Errorf("Run() error = %v, want nil for soft failure", err)
	}
	if outcome.Passed {
		t.Error("Passed = true, want false")
	}
}

func TestRun_HardStatusFailureRaises(t *testing.T) {
	outcome, err := Run(&transport.Result{Status: 500}, Status{Expect: []int{200}, Hard: true})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Run() error = %v, want ErrValidation", err)
	}
	if outcome.Passed {
		t.Error("Passed = true, want false")
	}
}

func TestRun_HardMemberInsideComposite(t *testing.T) {
	// The soft member fails, the hard member passes: no error.
	c := NewComposite(
		Status{Expect: []int{200}, Hard: true},
		failValidator{reason: "schema drift"},
	)
	_, err := Run(&transport.Result{Status: 200}, c)
	if err != nil {
		t.Errorf("Run() error = %v, want nil when only a soft member fails", err)
	}

	// The hard member itself fails: terminal.
	_, err = Run(&transport.Result{Status: 503}, c)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Run() error = %v, want ErrValidation", err)
	}
}

func TestAttach_PassesAndForwards(t *testing.T) {
	var gotLabel string
	var gotPayload []byte
	a := Attach{Sink: observe.SinkFunc(func(label string, payload []byte) {
		gotLabel, gotPayload = label, payload
	})}

	outcome := a.Validate(&transport.Result{Body: []byte(`{"ok":true}`)})
	if !outcome.Passed {
		t.Error("Attach failed the chain")
	}
	if gotLabel != "response-body" {
		t.Errorf("label = %q, want response-body", gotLabel)
	}
	if string(gotPayload) != `{"ok":true}` {
		t.Errorf("payload = %s", gotPayload)
	}
}

func TestAttach_SinkPanicNeverFailsChain(t *testing.T) {
	a := Attach{Sink: observe.SinkFunc(func(string, []byte) { panic("sink down") })}
	outcome := a.Validate(&transport.Result{Body: []byte("x")})
	if !outcome.Passed {
		t.Error("panicking sink failed the chain")
	}
}

func TestAttach_NilSink(t *testing.T) {
	outcome := Attach{}.Validate(&transport.Result{})
	if !outcome.Passed {
		t.Error("nil sink failed the chain")
	}
}
