package config

import (
	"errors"
	"fmt"
	"sync"
)

// Version names an API version, e.g. "v1".
type Version string

// Built-in versions.
const (
	V1 Version = "v1"
	V2 Version = "v2"
)

// ErrUnknownVersion indicates a lookup for an unregistered version.
var ErrUnknownVersion = errors.New("config: unknown API version")

// VersionConfig carries version-specific details so tests never
// hard-code versioned paths.
type VersionConfig struct {
	Version    Version
	PathPrefix string

	// EndpointOverrides maps logical endpoint names to version-specific
	// paths when a version deviates from the shared layout.
	EndpointOverrides map[string]string
}

// Registry resolves version details and the default version per
// environment. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	configs  map[Version]VersionConfig
	defaults map[Environment]Version
}

// NewRegistry creates a Registry pre-loaded with the built-in versions
// and per-environment defaults. Dev tracks the newest version;
// staging and prod stay on v1 until promotion.
func NewRegistry() *Registry {
	return &Registry{
		configs: map[Version]VersionConfig{
			V1: {Version: V1, PathPrefix: "api/v1"},
			V2: {Version: V2, PathPrefix: "api/v2"},
		},
		defaults: map[Environment]Version{
			EnvDev:     V2,
			EnvStaging: V1,
			EnvProd:    V1,
		},
	}
}

// Config returns the configuration registered for version.
func (r *Registry) Config(version Version) (VersionConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[version]
	if !ok {
		return VersionConfig{}, fmt.Errorf("%w: %s", ErrUnknownVersion, version)
	}
	return cfg, nil
}

// Default returns the default version for env, falling back to V1 for
// environments without an explicit default.
func (r *Registry) Default(env Environment) Version {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.defaults[env]; ok {
		return v
	}
	return V1
}

// Register adds or replaces a version configuration.
func (r *Registry) Register(cfg VersionConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.Version] = cfg
}

// Endpoint resolves a logical endpoint name for version: the override
// when one is registered, otherwise fallback.
func (r *Registry) Endpoint(version Version, name, fallback string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[version]
	if !ok {
		return fallback
	}
	if path, ok := cfg.EndpointOverrides[name]; ok {
		return path
	}
	return fallback
}
