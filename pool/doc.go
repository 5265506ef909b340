// Package pool provides a bounded pool of reusable script engines.
//
// Engines are expensive to create, so a fixed number are started eagerly
// and shared across units of work. Acquire hands out an idle engine, mints
// a new one while under the cap, and otherwise blocks until capacity frees
// up again, whether through a Return, a Discard, or a failed mint;
// TryAcquire is the non-blocking variant that fails fast with an
// exhaustion error. NewDedicated mints engines outside the pool's
// accounting for units of work that must not share engine state.
//
// The pool enforces exclusivity while an engine is checked out but does
// not reset engines between uses: script globals written by one holder
// are visible to the next. Callers that need isolation use dedicated
// engines instead.
package pool
