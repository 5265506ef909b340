package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// EngineError is a structured runtime fault raised by the embedded script
// engine. Position and source context are populated by the engine adapter;
// Translate folds them into the human-readable message before the fault
// leaves the execution environment.
type EngineError struct {
	Cause         error
	Message       string
	Source        string
	Code          string
	Category      string
	EngineName    string
	EngineVersion string
	Line          int
	Column        int
}

// Error implements the error interface
func (e *EngineError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an engine fault
func (e *EngineError) Is(target error) bool {
	_, ok := target.(*EngineError)
	return ok
}

// Translate converts a low-level engine fault into the same fault with an
// augmented, position-annotated message. It is a pure mapping: the input is
// not mutated, all structured fields are preserved, and anything that is
// not an *EngineError (including nil) passes through unchanged.
func Translate(err error) error {
	var ee *EngineError
	if !stderrors.As(err, &ee) {
		return err
	}

	var b strings.Builder
	b.WriteString(ee.Message)
	b.WriteString(fmt.Sprintf("\nLine: %d", ee.Line))
	b.WriteString(fmt.Sprintf("\nColumn: %d", ee.Column))
	if ee.Source != "" {
		b.WriteString("\nSource: ")
		b.WriteString(ee.Source)
	}

	return &EngineError{
		Cause:         ee.Cause,
		Message:       b.String(),
		Source:        ee.Source,
		Code:          ee.Code,
		Category:      ee.Category,
		EngineName:    ee.EngineName,
		EngineVersion: ee.EngineVersion,
		Line:          ee.Line,
		Column:        ee.Column,
	}
}
