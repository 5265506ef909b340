package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseAcquire   Phase = "acquire"   // engine pool acquisition
	PhaseResolve   Phase = "resolve"   // lazy engine resolution
	PhaseExecute   Phase = "execute"   // script execution
	PhaseRender    Phase = "render"    // component registration and rendering
	PhaseSerialize Phase = "serialize" // property serialization
	PhaseConfig    Phase = "config"    // configuration validation
	PhaseLoad      Phase = "load"      // precompiled script loading
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindDuplicateContainer Kind = "duplicate_container"
	KindDisposed           Kind = "disposed"
	KindExhausted          Kind = "exhausted"
	KindNotInitialized     Kind = "not_initialized"
	KindInvalidData        Kind = "invalid_data"
	KindClosed             Kind = "closed"
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err is a structured error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	if stderrors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// DuplicateContainer reports a caller-supplied container id that collides
// with one already registered in the same environment.
func DuplicateContainer(id string) *Error {
	return &Error{
		Phase:  PhaseRender,
		Kind:   KindDuplicateContainer,
		Detail: fmt.Sprintf("container id %q is already registered", id),
	}
}

// Disposed reports an operation invoked on an already-disposed environment.
func Disposed(op string) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindDisposed,
		Detail: fmt.Sprintf("%s called on a disposed environment", op),
	}
}

// Exhausted reports a pool at capacity with no idle engine.
func Exhausted(detail string) *Error {
	return &Error{
		Phase:  PhaseAcquire,
		Kind:   KindExhausted,
		Detail: detail,
	}
}

// Closed reports use of a closed pool.
func Closed(detail string) *Error {
	return &Error{
		Phase:  PhaseAcquire,
		Kind:   KindClosed,
		Detail: detail,
	}
}

// NotInitialized creates a not-initialized error for a missing collaborator
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// Load creates a precompiled script loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
