package capture

import (
	"context"
	"sync"

	"github.com/probelabs/apiprobe/transport"
)

// Entry is one recorded call outcome. Result is nil when the call
// failed before a result existed; Err is nil on success.
type Entry struct {
	Call   *transport.Call
	Result *transport.Result
	Err    error
}

// Store keeps the single most recent Entry for one execution unit.
// Record overwrites; the store never appends. The mutex is local to
// the store, so concurrent units never contend with each other.
type Store struct {
	mu   sync.Mutex
	last *Entry
	set  bool
}

// NewStore creates an empty store for one execution unit.
func NewStore() *Store {
	return &Store{}
}

// Record overwrites the store's slot with the latest pair. It is
// called unconditionally on success and failure so the last exchange
// is always available for diagnostics.
func (s *Store) Record(call *transport.Call, result *transport.Result, err error) {
	s.mu.Lock()
	s.last = &Entry{Call: call, Result: result, Err: err}
	s.set = true
	s.mu.Unlock()
}

// Last returns the most recent entry, or (nil, false) when nothing
// has been recorded yet.
func (s *Store) Last() (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, false
	}
	return s.last, true
}

// Reset clears the slot, typically between tests of the same unit.
func (s *Store) Reset() {
	s.mu.Lock()
	s.last = nil
	s.set = false
	s.mu.Unlock()
}

type ctxKey struct{}

// NewContext returns a context carrying the unit's store.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the store threaded through ctx, or nil when the
// context carries none. Callers in the pipeline treat a nil store as
// capture disabled.
func FromContext(ctx context.Context) *Store {
	s, _ := ctx.Value(ctxKey{}).(*Store)
	return s
}
