package worker

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"os"
)

// DefaultEnvVar is the environment variable the default signal reads.
const DefaultEnvVar = "APIPROBE_WORKER_ID"

// FallbackID is the fixed identity used when no parallelism signal is
// available, i.e. the run is serial.
const FallbackID = "w0"

// Signal reports the identity of the current parallel worker.
// Implementations must not perform network I/O.
type Signal interface {
	// CurrentWorkerID returns the worker identifier and true, or
	// ("", false) when the run is not parallel.
	CurrentWorkerID() (string, bool)
}

// EnvSignal reads the worker identifier from an environment variable.
type EnvSignal struct {
	// Var is the variable name. Default: DefaultEnvVar.
	Var string
}

// CurrentWorkerID returns the variable's value, or false when unset.
func (s EnvSignal) CurrentWorkerID() (string, bool) {
	name := s.Var
	if name == "" {
		name = DefaultEnvVar
	}
	id := os.Getenv(name)
	return id, id != ""
}

// SignalFunc adapts a function to the Signal interface.
type SignalFunc func() (string, bool)

// CurrentWorkerID calls f.
func (f SignalFunc) CurrentWorkerID() (string, bool) { return f() }

// Context identifies one parallel execution unit. It is created once
// per worker at startup, is immutable, and must not be shared across
// units.
type Context struct {
	// ID is the worker identifier, stable for the worker's lifetime.
	ID string

	// Seed is a deterministic hash of ID, used to seed per-worker
	// data generators so generated payloads are unique per worker
	// but reproducible across runs.
	Seed uint32
}

// Resolve determines the current worker identity from sig. A nil or
// unavailable signal resolves to the fixed fallback identity rather
// than erroring, so serial and parallel runs share one code path.
func Resolve(sig Signal) Context {
	id := FallbackID
	if sig != nil {
		if got, ok := sig.CurrentWorkerID(); ok {
			id = got
		}
	}
	return Context{ID: id, Seed: seed(id)}
}

// seed hashes a worker identifier into a bounded integer. SHA-256
// keeps distinct identifiers collision-free for any realistic worker
// count; truncation to 32 bits matches the range data generators
// accept.
func seed(id string) uint32 {
	sum := sha256.Sum256([]byte(id))
	return binary.BigEndian.Uint32(sum[:4])
}

// Namespace returns the worker-scoped name "{prefix}-{workerID}" used
// to isolate topics, groups, and other shared-service resources.
func (c Context) Namespace(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, c.ID)
}

// Rand returns a new deterministic generator seeded from the worker
// seed. Each call returns an independent generator; callers own it
// exclusively and must not share it across units.
func (c Context) Rand() *rand.Rand {
	return rand.New(rand.NewPCG(uint64(c.Seed), uint64(c.Seed)))
}
