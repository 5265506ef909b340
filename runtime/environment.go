package runtime

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	reactruntime "github.com/wippyai/react-runtime"
	"github.com/wippyai/react-runtime/errors"
	"github.com/wippyai/react-runtime/pool"
)

// consoleDrainScript retrieves the console calls buffered inside the
// engine during this unit of work and clears the buffer.
const consoleDrainScript = "console.getCalls()"

// containerPrefix is the prefix of auto-generated container ids.
const containerPrefix = "react"

var componentNamePattern = regexp.MustCompile(`^[a-zA-Z_$][0-9a-zA-Z_$]*(\.[a-zA-Z_$][0-9a-zA-Z_$]*)*$`)

// Environment is the per-unit-of-work orchestrator. It owns the registry
// of components created during the unit of work, resolves an engine
// lazily according to the reuse policy, and assembles the ordered
// initialization script.
//
// An Environment is confined to one unit of work. It carries no locking
// and MUST NOT be shared across goroutines. Construct one at the
// unit-of-work boundary and Dispose it on every exit path.
type Environment struct {
	pool   *pool.Pool
	cfg    Config
	logger *zap.Logger

	engine   reactruntime.Engine
	pooled   bool
	resolved bool
	disposed bool
	loadErr  error

	counter      int
	components   []*Component
	versionLabel string
}

// NewEnvironment creates an environment bound to the pool and
// configuration. No engine is acquired until the first operation that
// needs one.
func NewEnvironment(p *pool.Pool, cfg Config) *Environment {
	cfg.withDefaults()
	return &Environment{
		pool:   p,
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// resolve returns the environment's engine, acquiring it on first use.
// With ReuseEngines the engine is borrowed from the pool and returned on
// Dispose; otherwise a dedicated engine is created for this unit of work.
// Once resolved the handle never changes for the environment's lifetime.
func (e *Environment) resolve() (reactruntime.Engine, error) {
	if e.resolved {
		if e.loadErr != nil {
			return nil, e.loadErr
		}
		return e.engine, nil
	}

	var (
		eng reactruntime.Engine
		err error
	)
	if e.cfg.ReuseEngines {
		eng, err = e.pool.Acquire()
		e.pooled = true
	} else {
		eng, err = e.pool.NewDedicated()
	}
	if err != nil {
		e.pooled = false
		return nil, err
	}

	// The handle is considered resolved even if bundle loading fails
	// below, so Dispose still releases it.
	e.engine = eng
	e.resolved = true
	e.logger.Debug("engine resolved",
		zap.String("engine", eng.Name()),
		zap.Bool("pooled", e.pooled))

	// A partially-loaded engine must not serve later operations; latch the
	// failure so every subsequent call re-fails with it.
	if err := e.loadPrecompiled(eng); err != nil {
		e.loadErr = err
		return nil, err
	}
	return eng, nil
}

// Execute runs a script snippet for side effects only.
func (e *Environment) Execute(code string) error {
	if e.disposed {
		return errors.Disposed("Execute")
	}
	eng, err := e.resolve()
	if err != nil {
		return err
	}
	return errors.Translate(eng.Run(code))
}

// Evaluate executes an expression and returns its value.
func (e *Environment) Evaluate(code string) (any, error) {
	if e.disposed {
		return nil, errors.Disposed("Evaluate")
	}
	eng, err := e.resolve()
	if err != nil {
		return nil, err
	}
	v, err := eng.Evaluate(code)
	if err != nil {
		return nil, errors.Translate(err)
	}
	return v, nil
}

// Invoke calls a named engine function with the given arguments.
func (e *Environment) Invoke(fn string, args ...any) (any, error) {
	if e.disposed {
		return nil, errors.Disposed("Invoke")
	}
	eng, err := e.resolve()
	if err != nil {
		return nil, err
	}
	v, err := eng.Invoke(fn, args...)
	if err != nil {
		return nil, errors.Translate(err)
	}
	return v, nil
}

// HasBinding reports whether a global binding exists in the engine.
// A missing binding is (false, nil); genuine runtime faults propagate
// translated.
func (e *Environment) HasBinding(name string) (bool, error) {
	if e.disposed {
		return false, errors.Disposed("HasBinding")
	}
	eng, err := e.resolve()
	if err != nil {
		return false, err
	}
	ok, err := eng.HasGlobal(name)
	if err != nil {
		return false, errors.Translate(err)
	}
	return ok, nil
}

// CreateComponent allocates and registers a component entry. An empty
// containerID generates one from the environment's counter; an explicit
// id that collides with an already-registered entry fails. Registration
// order determines initialization-script emission order.
func (e *Environment) CreateComponent(name string, props any, containerID string) (*Component, error) {
	if e.disposed {
		return nil, errors.Disposed("CreateComponent")
	}
	if !componentNamePattern.MatchString(name) {
		return nil, errors.InvalidInput(errors.PhaseRender,
			fmt.Sprintf("invalid component name %q", name))
	}

	if containerID == "" {
		e.counter++
		containerID = fmt.Sprintf("%s%d", containerPrefix, e.counter)
	} else {
		for _, c := range e.components {
			if c.ContainerID == containerID {
				return nil, errors.DuplicateContainer(containerID)
			}
		}
	}

	c := &Component{
		Name:        name,
		Props:       props,
		ContainerID: containerID,
		serializer:  e.cfg.Serializer,
	}
	e.components = append(e.components, c)
	e.logger.Debug("component registered",
		zap.String("name", name),
		zap.String("container", containerID))
	return c, nil
}

// InitScript assembles the client-side bootstrap script: first the
// console calls drained from the engine, then each registered component's
// initialization fragment in registration order. The component portion is
// byte-identical across calls; the drain portion reflects whatever the
// engine buffered since the previous drain.
func (e *Environment) InitScript() (string, error) {
	if e.disposed {
		return "", errors.Disposed("InitScript")
	}
	eng, err := e.resolve()
	if err != nil {
		return "", err
	}

	var b strings.Builder

	v, err := eng.Evaluate(consoleDrainScript)
	if err != nil {
		return "", errors.Translate(err)
	}
	if drained, ok := v.(string); ok && drained != "" {
		b.WriteString(drained)
		if !strings.HasSuffix(drained, "\n") {
			b.WriteByte('\n')
		}
	}

	for _, c := range e.components {
		frag, err := c.RenderInitScript()
		if err != nil {
			return "", err
		}
		b.WriteString(frag)
		b.WriteString(";\n")
	}
	return b.String(), nil
}

// EngineVersionLabel returns a human-readable engine identifier,
// resolving the engine if needed. Memoized for the environment's life.
func (e *Environment) EngineVersionLabel() (string, error) {
	if e.disposed {
		return "", errors.Disposed("EngineVersionLabel")
	}
	if e.versionLabel != "" {
		return e.versionLabel, nil
	}
	eng, err := e.resolve()
	if err != nil {
		return "", err
	}
	e.versionLabel = eng.Name() + " " + eng.Version()
	return e.versionLabel, nil
}

// Dispose tears down the environment. A pooled engine is returned to the
// pool if and only if it was resolved; a dedicated engine is closed.
// Safe to call when no engine was ever resolved, and safe to call more
// than once.
func (e *Environment) Dispose() error {
	if e.disposed {
		return nil
	}
	e.disposed = true

	if !e.resolved {
		return nil
	}
	eng := e.engine
	e.engine = nil

	if e.pooled {
		e.pool.Return(eng)
		e.logger.Debug("engine returned to pool", zap.String("engine", eng.Name()))
		return nil
	}
	e.logger.Debug("dedicated engine closed", zap.String("engine", eng.Name()))
	return eng.Close()
}
