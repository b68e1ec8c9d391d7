package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", s.BaseURL)
	}
	if s.Env != EnvDev {
		t.Errorf("Env = %q, want dev", s.Env)
	}
	if s.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", s.Timeout)
	}
	if s.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", s.MaxRetries)
	}
	if s.TopicPrefix != "test-events" {
		t.Errorf("TopicPrefix = %q", s.TopicPrefix)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APIPROBE_BASE_URL", "https://staging.example.com")
	t.Setenv("APIPROBE_ENV", "staging")
	t.Setenv("APIPROBE_TIMEOUT", "5")
	t.Setenv("APIPROBE_MAX_RETRIES", "1")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.BaseURL != "https://staging.example.com" {
		t.Errorf("BaseURL = %q", s.BaseURL)
	}
	if s.Env != EnvStaging {
		t.Errorf("Env = %q, want staging", s.Env)
	}
	if s.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", s.Timeout)
	}
	if s.MaxRetries != 1 {
		t.Errorf("MaxRetries = %d, want 1", s.MaxRetries)
	}
}

func TestLoad_ExpandsReferencesInValues(t *testing.T) {
	t.Setenv("VAULT_PASSWORD", "s3cret")
	t.Setenv("APIPROBE_AUTH_PASSWORD", "${VAULT_PASSWORD}")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.AuthPassword != "s3cret" {
		t.Errorf("AuthPassword = %q, want expanded value", s.AuthPassword)
	}
}

func TestLoad_MissingReferenceFails(t *testing.T) {
	t.Setenv("APIPROBE_AUTH_PASSWORD", "${APIPROBE_NO_SUCH_VAR_SET}")

	if _, err := Load(); err == nil {
		t.Fatal("Load() with dangling reference succeeded, want error")
	}
}

func TestLoad_UnknownEnvironmentRejected(t *testing.T) {
	t.Setenv("APIPROBE_ENV", "qa")

	if _, err := Load(); err == nil {
		t.Fatal("Load() with unknown environment succeeded, want error")
	}
}

func TestLoad_BadIntegerRejected(t *testing.T) {
	t.Setenv("APIPROBE_MAX_RETRIES", "many")

	if _, err := Load(); err == nil {
		t.Fatal("Load() with non-integer retries succeeded, want error")
	}
}

func TestVersionedBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		version string
		want    string
	}{
		{"with version", "http://host", "v1", "http://host/api/v1"},
		{"trailing slash trimmed", "http://host/", "v2", "http://host/api/v2"},
		{"no version", "http://host/", "", "http://host"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{BaseURL: tt.baseURL, APIVersion: tt.version}
			if got := s.VersionedBaseURL(); got != tt.want {
				t.Errorf("VersionedBaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandEnvStrict_EscapedDollar(t *testing.T) {
	got, err := ExpandEnvStrict("cost is $$5")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if got != "cost is $5" {
		t.Errorf("ExpandEnvStrict() = %q", got)
	}
}

func TestExpandEnvStrict_ListsAllMissing(t *testing.T) {
	_, err := ExpandEnvStrict("${APIPROBE_MISSING_B} ${APIPROBE_MISSING_A}")
	if err == nil {
		t.Fatal("ExpandEnvStrict() with missing vars succeeded")
	}
	if !strings.Contains(err.Error(), "APIPROBE_MISSING_A, APIPROBE_MISSING_B") {
		t.Errorf("error does not list missing vars sorted: %v", err)
	}
}

func TestRegistry_ConfigAndDefaults(t *testing.T) {
	r := NewRegistry()

	cfg, err := r.Config(V1)
	if err != nil {
		t.Fatalf("Config(v1) error = %v", err)
	}
	if cfg.PathPrefix != "api/v1" {
		t.Errorf("PathPrefix = %q", cfg.PathPrefix)
	}

	if _, err := r.Config(Version("v9")); !errors.Is(err, ErrUnknownVersion) {
		t.Errorf("Config(v9) error = %v, want ErrUnknownVersion", err)
	}

	if got := r.Default(EnvDev); got != V2 {
		t.Errorf("Default(dev) = %s, want v2", got)
	}
	if got := r.Default(EnvProd); got != V1 {
		t.Errorf("Default(prod) = %s, want v1", got)
	}
	if got := r.Default(Environment("qa")); got != V1 {
		t.Errorf("Default(unknown) = %s, want v1 fallback", got)
	}
}

func TestRegistry_EndpointOverrides(t *testing.T) {
	r := NewRegistry()
	r.Register(VersionConfig{
		Version:    V2,
		PathPrefix: "api/v2",
		EndpointOverrides: map[string]string{
			"users": "accounts/users",
		},
	})

	if got := r.Endpoint(V2, "users", "users"); got != "accounts/users" {
		t.Errorf("Endpoint(v2, users) = %q, want override", got)
	}
	if got := r.Endpoint(V2, "orders", "orders"); got != "orders" {
		t.Errorf("Endpoint(v2, orders) = %q, want fallback", got)
	}
	if got := r.Endpoint(Version("v9"), "users", "users"); got != "users" {
		t.Errorf("Endpoint(v9) = %q, want fallback for unknown version", got)
	}
}
