package worker

import "testing"

func TestResolve_FallbackWhenNoSignal(t *testing.T) {
	ctx := Resolve(nil)
	if ctx.ID != FallbackID {
		t.Errorf("ID = %q, want %q", ctx.ID, FallbackID)
	}

	ctx2 := Resolve(SignalFunc(func() (string, bool) { return "", false }))
	if ctx2.ID != FallbackID {
		t.Errorf("ID = %q, want %q", ctx2.ID, FallbackID)
	}
	if ctx2.Seed != ctx.Seed {
		t.Errorf("fallback seeds differ: %d vs %d", ctx2.Seed, ctx.Seed)
	}
}

func TestResolve_UsesSignal(t *testing.T) {
	ctx := Resolve(SignalFunc(func() (string, bool) { return "gw3", true }))
	if ctx.ID != "gw3" {
		t.Errorf("ID = %q, want gw3", ctx.ID)
	}
}

func TestResolve_EnvSignal(t *testing.T) {
	t.Setenv(DefaultEnvVar, "gw7")
	ctx := Resolve(EnvSignal{})
	if ctx.ID != "gw7" {
		t.Errorf("ID = %q, want gw7", ctx.ID)
	}
}

func TestSeed_Deterministic(t *testing.T) {
	a := Resolve(SignalFunc(func() (string, bool) { return "gw1", true }))
	b := Resolve(SignalFunc(func() (string, bool) { return "gw1", true }))
	if a.Seed != b.Seed {
		t.Errorf("same worker produced different seeds: %d vs %d", a.Seed, b.Seed)
	}
}

func TestSeed_DistinctWorkers(t *testing.T) {
	ids := []string{"gw0", "gw1", "gw2", "gw3", "gw10", "gw11", "master", "w0"}
	seen := make(map[uint32]string, len(ids))
	for _, id := range ids {
		ctx := Resolve(SignalFunc(func() (string, bool) { return id, true }))
		if prev, ok := seen[ctx.Seed]; ok {
			t.Errorf("seed collision between %q and %q", prev, id)
		}
		seen[ctx.Seed] = id
	}
}

func TestNamespace(t *testing.T) {
	ctx := Resolve(SignalFunc(func() (string, bool) { return "gw2", true }))
	if got := ctx.Namespace("orders"); got != "orders-gw2" {
		t.Errorf("Namespace() = %q, want orders-gw2", got)
	}

	other := Resolve(SignalFunc(func() (string, bool) { return "gw3", true }))
	if ctx.Namespace("orders") == other.Namespace("orders") {
		t.Error("distinct workers produced identical namespaces")
	}
}

func TestRand_Reproducible(t *testing.T) {
	ctx := Resolve(SignalFunc(func() (string, bool) { return "gw5", true }))

	a, b := ctx.Rand(), ctx.Rand()
	for i := 0; i < 10; i++ {
		if av, bv := a.Int64(), b.Int64(); av != bv {
			t.Fatalf("draw %d differs: %d vs %d", i, av, bv)
		}
	}
}
