package reactruntime

// Engine is the capability set every embedded script engine must provide.
// All calls are synchronous with respect to the caller. An Engine is NOT
// safe for concurrent use; the pool guarantees at most one holder at a time.
type Engine interface {
	// Run executes a script for its side effects only.
	Run(code string) error

	// Evaluate executes an expression and returns its value as a Go value.
	// Undefined and null both map to nil.
	Evaluate(code string) (any, error)

	// Invoke calls a named global function with the given arguments.
	Invoke(fn string, args ...any) (any, error)

	// HasGlobal reports whether a global binding exists. A missing binding
	// is (false, nil); only genuine runtime faults produce an error.
	HasGlobal(name string) (bool, error)

	// Name identifies the engine implementation, e.g. "goja".
	Name() string

	// Version is the engine implementation version.
	Version() string

	// Close releases the engine. The engine must not be used afterwards.
	Close() error
}

// EngineFactory mints a fresh engine instance. Used by the pool for both
// pooled and dedicated engines.
type EngineFactory func() (Engine, error)

// Serializer converts component properties (and typed results) to their
// script-side representation. The default is encoding/json.
type Serializer interface {
	Serialize(v any) (string, error)
}

// FileSystem abstracts script file access for precompiled bundle loading.
type FileSystem interface {
	Read(path string) ([]byte, error)
}

// Cache stores script payloads so bundles are not re-read on every
// environment that resolves an engine.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// Hasher computes a stable content hash used as a cache discriminator.
type Hasher interface {
	Compute(data []byte) string
}
