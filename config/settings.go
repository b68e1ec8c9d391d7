package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment names a deployment target of the API under test.
type Environment string

// Known environments.
const (
	EnvDev     Environment = "dev"
	EnvStaging Environment = "staging"
	EnvProd    Environment = "prod"
)

// EnvPrefix is prepended to every settings variable name.
const EnvPrefix = "APIPROBE_"

// Settings is an immutable snapshot of harness configuration. Load is
// the only constructor; copies are safe to pass around and field
// values never change after loading.
type Settings struct {
	// BaseURL is the root of the API under test.
	BaseURL string

	// APIVersion is the default version segment, e.g. "v1". Empty
	// means the registry default for Env applies.
	APIVersion string

	// Env is the target environment.
	Env Environment

	// Credentials for password and client-credential auth flows.
	AuthUsername string
	AuthPassword string
	ClientID     string
	ClientSecret string
	TokenURL     string

	// Timeout bounds a single call attempt.
	Timeout time.Duration

	// MaxRetries bounds resend attempts for transient failures.
	MaxRetries int

	// Broker connection details.
	BrokerURL      string
	BrokerExchange string

	// TopicPrefix namespaces every test topic.
	TopicPrefix string
}

// Load reads APIPROBE_* environment variables, expands ${VAR}
// references in their values, applies defaults, and validates the
// snapshot.
func Load() (Settings, error) {
	s := Settings{
		BaseURL:        "http://localhost:8000",
		APIVersion:     "",
		Env:            EnvDev,
		AuthUsername:   "testuser",
		AuthPassword:   "testpassword",
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		BrokerExchange: "apiprobe",
		TopicPrefix:    "test-events",
	}

	var err error
	if s.BaseURL, err = lookup("BASE_URL", s.BaseURL); err != nil {
		return Settings{}, err
	}
	if s.APIVersion, err = lookup("API_VERSION", s.APIVersion); err != nil {
		return Settings{}, err
	}
	env, err := lookup("ENV", string(s.Env))
	if err != nil {
		return Settings{}, err
	}
	s.Env = Environment(env)
	if s.AuthUsername, err = lookup("AUTH_USERNAME", s.AuthUsername); err != nil {
		return Settings{}, err
	}
	if s.AuthPassword, err = lookup("AUTH_PASSWORD", s.AuthPassword); err != nil {
		return Settings{}, err
	}
	if s.ClientID, err = lookup("CLIENT_ID", s.ClientID); err != nil {
		return Settings{}, err
	}
	if s.ClientSecret, err = lookup("CLIENT_SECRET", s.ClientSecret); err != nil {
		return Settings{}, err
	}
	if s.TokenURL, err = lookup("TOKEN_URL", s.TokenURL); err != nil {
		return Settings{}, err
	}
	if s.Timeout, err = lookupSeconds("TIMEOUT", s.Timeout); err != nil {
		return Settings{}, err
	}
	if s.MaxRetries, err = lookupInt("MAX_RETRIES", s.MaxRetries); err != nil {
		return Settings{}, err
	}
	if s.BrokerURL, err = lookup("BROKER_URL", s.BrokerURL); err != nil {
		return Settings{}, err
	}
	if s.BrokerExchange, err = lookup("BROKER_EXCHANGE", s.BrokerExchange); err != nil {
		return Settings{}, err
	}
	if s.TopicPrefix, err = lookup("TOPIC_PREFIX", s.TopicPrefix); err != nil {
		return Settings{}, err
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks structural constraints on the snapshot.
func (s Settings) Validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("config: base URL is required")
	}
	switch s.Env {
	case EnvDev, EnvStaging, EnvProd:
	default:
		return fmt.Errorf("config: unknown environment %q", s.Env)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", s.Timeout)
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("config: max retries must not be negative, got %d", s.MaxRetries)
	}
	return nil
}

// VersionedBaseURL returns the base URL with the API version path
// included, e.g. "http://host/api/v1". With no version configured it
// returns the bare base URL.
func (s Settings) VersionedBaseURL() string {
	base := strings.TrimRight(s.BaseURL, "/")
	if s.APIVersion == "" {
		return base
	}
	return fmt.Sprintf("%s/api/%s", base, s.APIVersion)
}

func lookup(name, fallback string) (string, error) {
	raw, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return fallback, nil
	}
	expanded, err := ExpandEnvStrict(raw)
	if err != nil {
		return "", fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
	}
	return expanded, nil
}

func lookupInt(name string, fallback int) (int, error) {
	raw, err := lookup(name, "")
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s%s: not an integer: %q", EnvPrefix, name, raw)
	}
	return n, nil
}

func lookupSeconds(name string, fallback time.Duration) (time.Duration, error) {
	raw, err := lookup(name, "")
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s%s: not a number of seconds: %q", EnvPrefix, name, raw)
	}
	return time.Duration(n) * time.Second, nil
}
