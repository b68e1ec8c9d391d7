package client

import (
	"github.com/probelabs/apiprobe/config"
	"github.com/probelabs/apiprobe/resilience"
	"github.com/probelabs/apiprobe/worker"
)

// ConfigFromSettings builds a client Config from environment settings
// and a worker context. The API version falls back to the registry
// default for the target environment when settings carry none; a nil
// registry uses the built-in one. Auth, validators, and observe hooks
// stay at their defaults for the caller to fill in.
func ConfigFromSettings(s config.Settings, reg *config.Registry, w worker.Context) Config {
	if reg == nil {
		reg = config.NewRegistry()
	}
	version := s.APIVersion
	if version == "" {
		version = string(reg.Default(s.Env))
	}

	cfg := Config{
		BaseURL:  s.BaseURL,
		Version:  version,
		WorkerID: w.ID,
		Timeout:  s.Timeout,
	}
	if s.MaxRetries > 0 {
		cfg.Retry = resilience.NewRetry(resilience.Policy{MaxAttempts: s.MaxRetries})
	}
	return cfg
}
