package auth

import (
	"context"
	"testing"

	"github.com/probelabs/apiprobe/transport"
)

func call() *transport.Call {
	return &transport.Call{
		Method:  "GET",
		Target:  "http://api/users",
		Headers: map[string]string{"Accept": "application/json"},
	}
}

func TestStaticToken_Apply(t *testing.T) {
	in := call()
	out, err := StaticToken{Token: "abc123"}.Apply(context.Background(), in)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := out.Header("Authorization"); got != "Bearer abc123" {
		t.Errorf("Authorization = %q, want Bearer abc123", got)
	}
	if got := out.Header("Accept"); got != "application/json" {
		t.Errorf("existing header lost: Accept = %q", got)
	}
}

func TestStaticToken_DoesNotMutateInput(t *testing.T) {
	in := call()
	if _, err := (StaticToken{Token: "abc"}).Apply(context.Background(), in); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := in.Header("Authorization"); got != "" {
		t.Errorf("input call mutated: Authorization = %q", got)
	}
}

func TestAPIKey_Apply(t *testing.T) {
	out, err := APIKey{Key: "k-1"}.Apply(context.Background(), call())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := out.Header("X-API-Key"); got != "k-1" {
		t.Errorf("X-API-Key = %q, want k-1", got)
	}
}

func TestAPIKey_CustomHeader(t *testing.T) {
	out, err := APIKey{Key: "k-2", HeaderName: "X-Service-Key"}.Apply(context.Background(), call())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := out.Header("X-Service-Key"); got != "k-2" {
		t.Errorf("X-Service-Key = %q, want k-2", got)
	}
}

func TestNone_Apply(t *testing.T) {
	in := call()
	out, err := None{}.Apply(context.Background(), in)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out == in {
		t.Error("Apply() returned the input call, want a copy")
	}
	if len(out.Headers) != len(in.Headers) {
		t.Errorf("headers changed: %v", out.Headers)
	}
}
