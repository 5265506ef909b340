package pool

import (
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	reactruntime "github.com/wippyai/react-runtime"
	"github.com/wippyai/react-runtime/errors"
)

// fakeEngine is a minimal Engine for pool lifecycle tests.
type fakeEngine struct {
	id     int
	closed atomic.Bool
}

func (f *fakeEngine) Run(string) error { return nil }

func (f *fakeEngine) Evaluate(string) (any, error) { return nil, nil }

func (f *fakeEngine) Invoke(string, ...any) (any, error) { return nil, nil }

func (f *fakeEngine) HasGlobal(string) (bool, error) { return false, nil }

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Version() string { return "0.0.0" }
func (f *fakeEngine) Close() error {
	f.closed.Store(true)
	return nil
}

func newFakeFactory() (reactruntime.EngineFactory, *atomic.Int32) {
	var count atomic.Int32
	factory := func() (reactruntime.Engine, error) {
		return &fakeEngine{id: int(count.Add(1))}, nil
	}
	return factory, &count
}

func TestNew_EagerFill(t *testing.T) {
	factory, count := newFakeFactory()
	p, err := New(factory, Options{Initial: 3, Max: 5})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	if got := count.Load(); got != 3 {
		t.Fatalf("Expected 3 eagerly-created engines, got %d", got)
	}
	idle, created := p.Stats()
	if idle != 3 || created != 3 {
		t.Fatalf("Expected 3 idle / 3 created, got %d/%d", idle, created)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, Options{}); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("Expected invalid_input for nil factory, got %v", err)
	}

	factory, _ := newFakeFactory()
	if _, err := New(factory, Options{Initial: 10, Max: 2}); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("Expected invalid_input for initial > max, got %v", err)
	}
}

func TestNew_FactoryFailureClosesStarted(t *testing.T) {
	var created []*fakeEngine
	calls := 0
	factory := func() (reactruntime.Engine, error) {
		calls++
		if calls == 3 {
			return nil, fmt.Errorf("engine 3 exploded")
		}
		e := &fakeEngine{id: calls}
		created = append(created, e)
		return e, nil
	}

	_, err := New(factory, Options{Initial: 3, Max: 5})
	if err == nil {
		t.Fatal("Expected construction to fail")
	}
	for _, e := range created {
		if !e.closed.Load() {
			t.Fatalf("Expected engine %d closed after failed construction", e.id)
		}
	}
}

func TestAcquire_ReusesIdleBeforeMinting(t *testing.T) {
	factory, count := newFakeFactory()
	p, err := New(factory, Options{Initial: 1, Max: 3})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	e1, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	p.Return(e1)

	e2, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if e1 != e2 {
		t.Fatal("Expected the idle engine to be reused")
	}
	if count.Load() != 1 {
		t.Fatalf("Expected no extra mint, factory ran %d times", count.Load())
	}
}

func TestTryAcquire_Exhaustion(t *testing.T) {
	factory, _ := newFakeFactory()
	p, err := New(factory, Options{Initial: 1, Max: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	e, err := p.TryAcquire()
	if err != nil {
		t.Fatalf("TryAcquire failed: %v", err)
	}

	if _, err := p.TryAcquire(); !errors.IsKind(err, errors.KindExhausted) {
		t.Fatalf("Expected exhausted, got %v", err)
	}

	p.Return(e)
	e2, err := p.TryAcquire()
	if err != nil {
		t.Fatalf("TryAcquire after Return failed: %v", err)
	}
	if e2 != e {
		t.Fatal("Expected the returned physical engine back")
	}
}

func TestAcquire_BlocksUntilReturn(t *testing.T) {
	factory, _ := newFakeFactory()
	p, err := New(factory, Options{Initial: 1, Max: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	e, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	got := make(chan reactruntime.Engine, 1)
	go func() {
		e2, err := p.Acquire()
		if err != nil {
			t.Errorf("blocked Acquire failed: %v", err)
		}
		got <- e2
	}()

	select {
	case <-got:
		t.Fatal("Acquire should block while the only engine is checked out")
	case <-time.After(50 * time.Millisecond):
	}

	p.Return(e)

	select {
	case e2 := <-got:
		if e2 != e {
			t.Fatal("Expected the returned engine")
		}
		p.Return(e2)
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire did not unblock after Return")
	}
}

func TestDiscard_FreesCapacity(t *testing.T) {
	factory, count := newFakeFactory()
	p, err := New(factory, Options{Initial: 1, Max: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	e, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	p.Discard(e)
	if !e.(*fakeEngine).closed.Load() {
		t.Fatal("Expected discarded engine closed")
	}

	e2, err := p.TryAcquire()
	if err != nil {
		t.Fatalf("Expected capacity freed after Discard: %v", err)
	}
	if e2 == e {
		t.Fatal("Expected a fresh engine after Discard")
	}
	if count.Load() != 2 {
		t.Fatalf("Expected a second mint, factory ran %d times", count.Load())
	}
}

func TestAcquire_UnblocksAfterDiscard(t *testing.T) {
	factory, count := newFakeFactory()
	p, err := New(factory, Options{Initial: 1, Max: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	e, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	got := make(chan reactruntime.Engine, 1)
	go func() {
		e2, err := p.Acquire()
		if err != nil {
			t.Errorf("blocked Acquire failed: %v", err)
		}
		got <- e2
	}()

	select {
	case <-got:
		t.Fatal("Acquire should block while the only engine is checked out")
	case <-time.After(50 * time.Millisecond):
	}

	// Discarding the unhealthy engine frees the slot; the waiter must be
	// woken and mint a replacement.
	p.Discard(e)

	select {
	case e2 := <-got:
		if e2 == e {
			t.Fatal("Expected a freshly-minted engine, not the discarded one")
		}
		p.Return(e2)
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire did not unblock after Discard freed capacity")
	}
	if count.Load() != 2 {
		t.Fatalf("Expected a replacement mint, factory ran %d times", count.Load())
	}
}

func TestAcquire_BlockedCallerFailsOnClose(t *testing.T) {
	factory, _ := newFakeFactory()
	p, err := New(factory, Options{Initial: 1, Max: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	e, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	errs := make(chan error, 1)
	go func() {
		_, err := p.Acquire()
		errs <- err
	}()

	select {
	case <-errs:
		t.Fatal("Acquire should block while the only engine is checked out")
	case <-time.After(50 * time.Millisecond):
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	select {
	case err := <-errs:
		if !errors.IsKind(err, errors.KindClosed) {
			t.Fatalf("Expected closed error for blocked acquirer, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Blocked Acquire did not fail after Close")
	}

	p.Return(e)
}

func TestNewDedicated_OutsideAccounting(t *testing.T) {
	factory, _ := newFakeFactory()
	p, err := New(factory, Options{Initial: 1, Max: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	d, err := p.NewDedicated()
	if err != nil {
		t.Fatalf("NewDedicated failed: %v", err)
	}
	defer d.Close()

	// The dedicated engine does not consume the pool's single slot.
	e, err := p.TryAcquire()
	if err != nil {
		t.Fatalf("TryAcquire failed: %v", err)
	}
	p.Return(e)
}

func TestClose_DisposesIdleAndRejectsAcquire(t *testing.T) {
	factory, _ := newFakeFactory()
	p, err := New(factory, Options{Initial: 2, Max: 2})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	checkedOut, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := p.Acquire(); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseAcquire, Kind: errors.KindClosed}) {
		t.Fatalf("Expected closed error, got %v", err)
	}

	// A late return disposes rather than pools.
	p.Return(checkedOut)
	if !checkedOut.(*fakeEngine).closed.Load() {
		t.Fatal("Expected engine disposed on return after close")
	}

	// Close is idempotent.
	if err := p.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}
}

func TestPool_ConcurrentAcquireReturn(t *testing.T) {
	factory, _ := newFakeFactory()
	p, err := New(factory, Options{Initial: 2, Max: 4})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				e, err := p.Acquire()
				if err != nil {
					t.Errorf("Acquire failed: %v", err)
					return
				}
				p.Return(e)
			}
		}()
	}
	wg.Wait()

	idle, created := p.Stats()
	if created > 4 {
		t.Fatalf("Created %d engines, cap is 4", created)
	}
	if idle != created {
		t.Fatalf("Expected all engines idle after workers finish, got %d/%d", idle, created)
	}
}
