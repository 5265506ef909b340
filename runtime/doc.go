// Package runtime provides the per-request execution environment for
// server-side React rendering.
//
// One Environment exists per unit of work (typically one inbound
// request). Components created during the unit of work are registered in
// order; InitScript later emits each component's bootstrap fragment in
// exactly that order, prefixed by any console output drained from the
// engine.
//
// # Environment Lifecycle
//
//	Fresh ──(first engine-facing op)──▶ EngineResolved ──▶ Disposed
//
// The engine handle is resolved at most once and never swapped. With
// Config.ReuseEngines the handle is borrowed from the pool and returned
// on Dispose; otherwise a dedicated engine is created and closed with the
// environment. Dispose is idempotent and safe on every exit path,
// including when no engine was ever resolved. Operations on a disposed
// environment fail with a disposed error rather than misbehaving.
//
// # Container Ids
//
// CreateComponent with an empty container id increments the
// environment's counter and formats "react{N}": react1, react2, ... in
// call order, with no gaps regardless of interleaved script execution.
// Explicit ids share the same uniqueness space; supplying one that is
// already registered fails with a duplicate-container error.
//
// # Fault Policy
//
// Every engine-originated fault is routed through errors.Translate so
// callers see Line/Column-annotated messages with all structured fields
// intact. Faults from other collaborators (for example the property
// serializer) propagate unchanged. Nothing is swallowed.
//
// # Precompiled Scripts
//
// Config.PrecompiledScriptPaths names bundles (React itself, component
// code) loaded into the engine at resolution time through the
// FileSystem, Cache and Hasher capabilities, before any caller script
// runs.
package runtime
