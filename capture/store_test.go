package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/probelabs/apiprobe/transport"
)

func TestStore_RoundTrip(t *testing.T) {
	s := NewStore()

	if _, ok := s.Last(); ok {
		t.Fatal("empty store reported an entry")
	}

	call := &transport.Call{Method: "GET", Target: "http://api/users/1"}
	result := &transport.Result{Status: 200}
	s.Record(call, result, nil)

	entry, ok := s.Last()
	if !ok {
		t.Fatal("Last() = not found after Record")
	}
	if entry.Call != call || entry.Result != result || entry.Err != nil {
		t.Errorf("Last() = %+v, want recorded pair", entry)
	}
}

func TestStore_OverwritesNotAppends(t *testing.T) {
	s := NewStore()

	first := &transport.Call{Method: "GET", Target: "http://api/a"}
	second := &transport.Call{Method: "POST", Target: "http://api/b"}
	s.Record(first, &transport.Result{Status: 200}, nil)
	s.Record(second, nil, errors.New("boom"))

	entry, ok := s.Last()
	if !ok {
		t.Fatal("Last() = not found")
	}
	if entry.Call != second {
		t.Errorf("Last().Call = %v, want the second call", entry.Call)
	}
	if entry.Err == nil {
		t.Error("Last().Err = nil, want recorded error")
	}
}

func TestStore_RecordsFailureWithoutResult(t *testing.T) {
	s := NewStore()
	call := &transport.Call{Method: "GET", Target: "http://api/a"}
	s.Record(call, nil, transport.ErrTimeout)

	entry, ok := s.Last()
	if !ok {
		t.Fatal("Last() = not found")
	}
	if entry.Result != nil {
		t.Errorf("Result = %v, want nil", entry.Result)
	}
	if !errors.Is(entry.Err, transport.ErrTimeout) {
		t.Errorf("Err = %v, want ErrTimeout", entry.Err)
	}
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	s.Record(&transport.Call{}, &transport.Result{}, nil)
	s.Reset()

	if _, ok := s.Last(); ok {
		t.Error("Last() found an entry after Reset")
	}
}

func TestStore_UnitIsolation(t *testing.T) {
	// Each unit owns its own store; concurrent writes must never
	// bleed into another unit's slot.
	const units = 16
	stores := make([]*Store, units)
	for i := range stores {
		stores[i] = NewStore()
	}

	var wg sync.WaitGroup
	for i := 0; i < units; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				target := fmt.Sprintf("http://api/unit/%d", i)
				stores[i].Record(&transport.Call{Target: target}, &transport.Result{Status: i}, nil)
			}
		}(i)
	}
	wg.Wait()

	for i, s := range stores {
		entry, ok := s.Last()
		if !ok {
			t.Fatalf("unit %d: no entry", i)
		}
		if entry.Result.Status != i {
			t.Errorf("unit %d saw status %d from another unit", i, entry.Result.Status)
		}
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got != nil {
		t.Errorf("FromContext(empty) = %v, want nil", got)
	}

	s := NewStore()
	ctx := NewContext(context.Background(), s)
	if got := FromContext(ctx); got != s {
		t.Errorf("FromContext() = %v, want the threaded store", got)
	}
}
