package pool

import (
	"sync"

	"go.uber.org/zap"

	reactruntime "github.com/wippyai/react-runtime"
	"github.com/wippyai/react-runtime/errors"
)

const (
	// DefaultInitial is the number of engines started eagerly.
	DefaultInitial = 10
	// DefaultMax caps concurrent engines; acquisition blocks beyond it.
	DefaultMax = 25
)

// Options configures pool construction.
type Options struct {
	// Initial is the eagerly-created engine count. Defaults to DefaultInitial.
	Initial int
	// Max is the maximum concurrent engine count. Defaults to DefaultMax.
	Max int
	// Logger receives pool lifecycle events. Defaults to a nop logger.
	Logger *zap.Logger
}

// Pool is a bounded manager of reusable engine instances shared across
// units of work. Safe for concurrent use.
//
// While an engine is checked out, the pool guarantees no other caller
// receives it. Returned engines are NOT reset: globals set by one unit of
// work remain visible to the next holder of the same physical engine.
type Pool struct {
	factory reactruntime.EngineFactory
	logger  *zap.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	idle    []reactruntime.Engine
	created int
	max     int
	closed  bool
}

// New creates a pool and eagerly starts opts.Initial engines.
// On factory failure the already-created engines are closed.
func New(factory reactruntime.EngineFactory, opts Options) (*Pool, error) {
	if factory == nil {
		return nil, errors.InvalidInput(errors.PhaseConfig, "engine factory must not be nil")
	}

	initial := opts.Initial
	if initial <= 0 {
		initial = DefaultInitial
	}
	max := opts.Max
	if max <= 0 {
		max = DefaultMax
	}
	if initial > max {
		return nil, errors.InvalidInput(errors.PhaseConfig, "initial engine count exceeds maximum")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		factory: factory,
		logger:  logger,
		max:     max,
	}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < initial; i++ {
		e, err := factory()
		if err != nil {
			p.Close()
			return nil, errors.New(errors.PhaseAcquire, errors.KindInvalidData).
				Detail("start engine %d of %d", i+1, initial).
				Cause(err).
				Build()
		}
		p.created++
		p.idle = append(p.idle, e)
	}

	logger.Debug("engine pool started",
		zap.Int("initial", initial),
		zap.Int("max", max))
	return p, nil
}

// Acquire hands out an idle engine, mints a new one while under capacity,
// or blocks until capacity frees up. Any event that frees capacity — a
// Return, a Discard, or a failed mint — wakes waiters. Blocking is the
// pool's only backpressure mechanism; there is no cancellation primitive.
func (p *Pool) Acquire() (reactruntime.Engine, error) {
	p.mu.Lock()
	for {
		if p.closed {
			p.mu.Unlock()
			return nil, errors.Closed("pool is closed")
		}
		if n := len(p.idle); n > 0 {
			e := p.idle[n-1]
			p.idle = p.idle[:n-1]
			p.mu.Unlock()
			return e, nil
		}
		if p.created < p.max {
			return p.mintLocked()
		}
		p.logger.Debug("pool at capacity, waiting for a freed slot",
			zap.Int("max", p.max))
		p.cond.Wait()
	}
}

// TryAcquire is the fail-fast variant: it never blocks and reports
// exhaustion when the pool is at capacity with no idle engine.
func (p *Pool) TryAcquire() (reactruntime.Engine, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errors.Closed("pool is closed")
	}
	if n := len(p.idle); n > 0 {
		e := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return e, nil
	}
	if p.created < p.max {
		return p.mintLocked()
	}
	p.mu.Unlock()
	return nil, errors.Exhausted("all engines checked out")
}

// mintLocked reserves a capacity slot, releases the lock for the factory
// call, and gives the slot back (waking a waiter) if the factory fails.
// Called with p.mu held; returns with it released.
func (p *Pool) mintLocked() (reactruntime.Engine, error) {
	p.created++
	p.mu.Unlock()

	e, err := p.factory()
	if err != nil {
		p.mu.Lock()
		p.created--
		p.cond.Signal()
		p.mu.Unlock()
		return nil, errors.New(errors.PhaseAcquire, errors.KindInvalidData).
			Detail("mint engine").
			Cause(err).
			Build()
	}
	p.logger.Debug("minted pool engine", zap.String("engine", e.Name()))
	return e, nil
}

// Return hands a checked-out engine back to the pool. After Close, the
// engine is disposed instead.
func (p *Pool) Return(e reactruntime.Engine) {
	if e == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.created--
		p.mu.Unlock()
		if err := e.Close(); err != nil {
			p.logger.Warn("close engine on return after pool close", zap.Error(err))
		}
		return
	}
	p.idle = append(p.idle, e)
	p.cond.Signal()
	p.mu.Unlock()
}

// Discard disposes a checked-out engine and frees its capacity slot,
// waking a blocked acquirer so the freed slot can be re-minted.
// Use it when an engine is left in an unusable state.
func (p *Pool) Discard(e reactruntime.Engine) {
	if e == nil {
		return
	}
	p.mu.Lock()
	p.created--
	p.cond.Signal()
	p.mu.Unlock()

	if err := e.Close(); err != nil {
		p.logger.Warn("close discarded engine", zap.Error(err))
	}
	p.logger.Debug("discarded pool engine", zap.String("engine", e.Name()))
}

// NewDedicated mints an engine outside the pool's accounting, scoped to a
// single unit of work. The caller owns it and must Close it.
func (p *Pool) NewDedicated() (reactruntime.Engine, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errors.Closed("pool is closed")
	}
	p.mu.Unlock()
	return p.factory()
}

// Stats reports the idle and total created engine counts.
func (p *Pool) Stats() (idle, created int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle), p.created
}

// Close disposes all idle engines and rejects further acquisitions.
// Blocked acquirers are woken and fail with a closed error; engines still
// checked out are disposed when returned.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	drained := p.idle
	p.idle = nil
	p.created -= len(drained)
	p.cond.Broadcast()
	p.mu.Unlock()

	var firstErr error
	for _, e := range drained {
		if err := e.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.logger.Debug("engine pool closed")
	return firstErr
}
