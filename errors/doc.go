// Package errors provides structured error types for the react-runtime
// library.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category). Use the Builder for structured construction:
//
//	err := errors.New(errors.PhaseRender, errors.KindInvalidInput).
//		Detail("component name must not be empty").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DuplicateContainer("react3")
//	err := errors.Exhausted("25 engines checked out")
//
// Runtime faults raised inside the script engine are a separate type,
// EngineError, which carries line, column, source fragment, error code and
// engine identity. Translate rewrites such a fault into one whose message
// embeds the position context while keeping every structured field intact
// for programmatic inspection.
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors
