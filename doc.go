// Package reactruntime provides a request-scoped runtime for rendering
// React components server-side inside an embedded JavaScript engine.
//
// A server process renders component markup and emits a bootstrap script
// that re-attaches interactivity in the browser. The hard part is not the
// rendering itself but the engine lifecycle around it: engines are
// expensive to create, so they are pooled and borrowed per unit of work,
// and every fault raised inside an engine must come back annotated with
// enough position context to debug without attaching to the process.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	react-runtime/       Root package with the Engine capability interfaces
//	├── runtime/         Execution environment: per-request orchestration,
//	│                    component registry, initialization script assembly
//	├── engine/          Engine adapters: goja (pure Go) and a wazero-hosted
//	│                    JavaScript interpreter guest
//	├── pool/            Bounded pool of reusable engine instances
//	└── errors/          Structured error types and runtime fault translation
//
// # Quick Start
//
// Create a pool once at startup, then one environment per request:
//
//	p, err := pool.New(func() (reactruntime.Engine, error) {
//	    return engine.NewGoja()
//	}, pool.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	env := runtime.NewEnvironment(p, runtime.Config{ReuseEngines: true})
//	defer env.Dispose()
//
//	cmp, err := env.CreateComponent("CommentsBox", props, "")
//	script, err := env.InitScript()
//
// # Engine Resolution
//
// An environment resolves its engine lazily, on the first operation that
// needs one, and keeps that handle for its whole life. With ReuseEngines
// enabled the handle is borrowed from the pool and returned on Dispose;
// otherwise a dedicated engine is created and torn down with the
// environment. Because pooled engines are not reset between uses, global
// bindings set by one unit of work are observable by the next one that
// borrows the same physical engine. That is a deliberate tradeoff of reuse
// mode, not a bug.
//
// # Thread Safety
//
// Pool is safe for concurrent use. Environment is confined to a single
// unit of work: it carries no locking and must never be shared across
// goroutines.
package reactruntime
