package runtime

import (
	"testing"

	reactruntime "github.com/wippyai/react-runtime"
	"github.com/wippyai/react-runtime/engine"
	"github.com/wippyai/react-runtime/pool"
)

func newGojaPool(t *testing.T) *pool.Pool {
	t.Helper()
	p, err := pool.New(func() (reactruntime.Engine, error) {
		return engine.NewGoja()
	}, pool.Options{Initial: 1, Max: 1})
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

// With reuse enabled, engine globals survive across sequential
// environments borrowing the same pooled engine.
func TestReuseCarriesState(t *testing.T) {
	p := newGojaPool(t)
	cfg := Config{ReuseEngines: true}

	env1 := NewEnvironment(p, cfg)
	if err := env1.Execute("var carried = 41"); err != nil {
		t.Fatal(err)
	}
	if err := env1.Dispose(); err != nil {
		t.Fatal(err)
	}

	env2 := NewEnvironment(p, cfg)
	defer env2.Dispose()
	v, err := env2.Evaluate("typeof carried !== 'undefined' ? carried + 1 : -1")
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(42) {
		t.Fatalf("carried value = %v, want 42", v)
	}
}

// Without reuse, each environment gets a dedicated engine and sees none
// of its predecessors' state.
func TestDedicatedEnginesIsolateState(t *testing.T) {
	p := newGojaPool(t)
	cfg := Config{ReuseEngines: false}

	env1 := NewEnvironment(p, cfg)
	if err := env1.Execute("var leaked = true"); err != nil {
		t.Fatal(err)
	}
	if err := env1.Dispose(); err != nil {
		t.Fatal(err)
	}

	env2 := NewEnvironment(p, cfg)
	defer env2.Dispose()
	ok, err := env2.HasBinding("leaked")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("state leaked into a dedicated engine")
	}
}

// The console shim is drained and cleared through the init script.
func TestInitScriptDrainsRealConsole(t *testing.T) {
	p := newGojaPool(t)
	env := NewEnvironment(p, Config{ReuseEngines: true})
	defer env.Dispose()

	if err := env.Execute(`console.log("hello"); console.warn("careful")`); err != nil {
		t.Fatal(err)
	}
	script, err := env.InitScript()
	if err != nil {
		t.Fatal(err)
	}
	if script != "console.log(\"hello\");\nconsole.warn(\"careful\");\n" {
		t.Fatalf("drained script = %q", script)
	}

	// Drained once, gone.
	script, err = env.InitScript()
	if err != nil {
		t.Fatal(err)
	}
	if script != "" {
		t.Fatalf("second drain not empty: %q", script)
	}
}
