// Package engine provides the script engine adapters.
//
// Two implementations of the root Engine interface are available:
//
//	Goja  - github.com/dop251/goja, a pure Go JavaScript interpreter.
//	        This is the default engine: no cgo, no external binary.
//	Wasm  - a JavaScript interpreter compiled to WebAssembly, executed
//	        under wazero. The guest is supplied by the host application
//	        (any interpreter exporting the qjs_alloc/qjs_free/qjs_eval
//	        ABI works) and results cross the boundary as a JSON envelope.
//
// # Fault Mapping
//
// Both adapters convert engine-level failures into *errors.EngineError
// carrying line, column, the offending source line, the script error name
// as Code, and the engine identity. The execution environment routes these
// through errors.Translate before they reach callers.
//
// # Console Capture
//
// The goja adapter installs a console shim at construction. Calls to
// console.log/info/warn/error are buffered inside the engine and drained
// with the console.getCalls() expression, which returns replayable
// statements and clears the buffer. Wasm guests are expected to ship the
// same contract in their prelude.
//
// # Thread Safety
//
// Engines are single-owner objects. The pool guarantees that at most one
// environment holds a given engine at a time; nothing here locks.
package engine
