package runtime

import (
	"fmt"
	"sync/atomic"

	reactruntime "github.com/wippyai/react-runtime"
	"github.com/wippyai/react-runtime/errors"
	"github.com/wippyai/react-runtime/pool"
)

// fakeEngine is an injectable test double for the Engine capability set.
type fakeEngine struct {
	id      int
	runs    []string
	drains  []string
	globals map[string]bool
	results map[string]any
	faults  map[string]*errors.EngineError
	closed  bool
}

func newFakeEngine(id int) *fakeEngine {
	return &fakeEngine{
		id:      id,
		globals: make(map[string]bool),
		results: make(map[string]any),
		faults:  make(map[string]*errors.EngineError),
	}
}

func (f *fakeEngine) Run(code string) error {
	if fault, ok := f.faults[code]; ok {
		return fault
	}
	f.runs = append(f.runs, code)
	return nil
}

func (f *fakeEngine) Evaluate(code string) (any, error) {
	if fault, ok := f.faults[code]; ok {
		return nil, fault
	}
	if code == consoleDrainScript {
		if len(f.drains) == 0 {
			return "", nil
		}
		out := f.drains[0]
		f.drains = f.drains[1:]
		return out, nil
	}
	return f.results[code], nil
}

func (f *fakeEngine) Invoke(fn string, args ...any) (any, error) {
	if fault, ok := f.faults[fn]; ok {
		return nil, fault
	}
	return f.results[fn], nil
}

func (f *fakeEngine) HasGlobal(name string) (bool, error) {
	if fault, ok := f.faults[name]; ok {
		return false, fault
	}
	return f.globals[name], nil
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Version() string { return fmt.Sprintf("0.0.%d", f.id) }

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

// testHarness bundles a pool of fake engines with the factory call count.
type testHarness struct {
	pool    *pool.Pool
	engines []*fakeEngine
	mints   *atomic.Int32
}

func newHarness(opts pool.Options) (*testHarness, error) {
	h := &testHarness{mints: &atomic.Int32{}}
	factory := func() (reactruntime.Engine, error) {
		e := newFakeEngine(int(h.mints.Add(1)))
		h.engines = append(h.engines, e)
		return e, nil
	}
	p, err := pool.New(factory, opts)
	if err != nil {
		return nil, err
	}
	h.pool = p
	return h, nil
}

// countingFS counts filesystem reads per path.
type countingFS struct {
	files map[string]string
	reads map[string]int
}

func newCountingFS(files map[string]string) *countingFS {
	return &countingFS{files: files, reads: make(map[string]int)}
}

func (fs *countingFS) Read(path string) ([]byte, error) {
	fs.reads[path]++
	content, ok := fs.files[path]
	if !ok {
		return nil, fmt.Errorf("no such script: %s", path)
	}
	return []byte(content), nil
}

// failingSerializer always fails, for fault-propagation tests.
type failingSerializer struct{ err error }

func (s failingSerializer) Serialize(any) (string, error) { return "", s.err }
