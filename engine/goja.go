package engine

import (
	stderrors "errors"
	"regexp"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"

	"github.com/dop251/goja"

	reactruntime "github.com/wippyai/react-runtime"
	"github.com/wippyai/react-runtime/errors"
)

// Compile-time check that Goja implements the Engine capability set
var _ reactruntime.Engine = (*Goja)(nil)

// consoleShim buffers console calls inside the engine so the environment
// can replay them client-side. getCalls drains the buffer.
const consoleShim = `
(function() {
	var calls = [];
	function capture(level) {
		return function() {
			var parts = [];
			for (var i = 0; i < arguments.length; i++) {
				try {
					parts.push(JSON.stringify(arguments[i]));
				} catch (e) {
					parts.push(JSON.stringify(String(arguments[i])));
				}
			}
			calls.push("console." + level + "(" + parts.join(", ") + ")");
		};
	}
	globalThis.console = {
		log: capture("log"),
		info: capture("info"),
		warn: capture("warn"),
		error: capture("error"),
		getCalls: function() {
			var out = calls.join(";\n");
			if (out.length > 0) {
				out += ";\n";
			}
			calls = [];
			return out;
		}
	};
})();
`

// Goja is an Engine backed by the pure Go goja interpreter.
// It is NOT safe for concurrent use; the pool guarantees single ownership.
type Goja struct {
	vm *goja.Runtime
}

// NewGoja creates a goja engine with the console shim installed.
func NewGoja() (*Goja, error) {
	g := &Goja{vm: goja.New()}
	if _, err := g.vm.RunString(consoleShim); err != nil {
		return nil, g.mapError(err, consoleShim)
	}
	return g, nil
}

func (g *Goja) Run(code string) error {
	if g.vm == nil {
		return errors.NotInitialized(errors.PhaseExecute, "engine")
	}
	_, err := g.vm.RunString(code)
	return g.mapError(err, code)
}

func (g *Goja) Evaluate(code string) (any, error) {
	if g.vm == nil {
		return nil, errors.NotInitialized(errors.PhaseExecute, "engine")
	}
	v, err := g.vm.RunString(code)
	if err != nil {
		return nil, g.mapError(err, code)
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	return v.Export(), nil
}

func (g *Goja) Invoke(fn string, args ...any) (any, error) {
	if g.vm == nil {
		return nil, errors.NotInitialized(errors.PhaseExecute, "engine")
	}

	callable, ok := goja.AssertFunction(g.vm.Get(fn))
	if !ok {
		return nil, &errors.EngineError{
			Message:       "TypeError: " + fn + " is not a function",
			Code:          "TypeError",
			Category:      "runtime",
			EngineName:    g.Name(),
			EngineVersion: g.Version(),
		}
	}

	jsArgs := make([]goja.Value, len(args))
	for i, a := range args {
		jsArgs[i] = g.vm.ToValue(a)
	}

	v, err := callable(goja.Undefined(), jsArgs...)
	if err != nil {
		return nil, g.mapError(err, fn)
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	return v.Export(), nil
}

// HasGlobal uses typeof so that a missing binding is not a fault. A global
// accessor that throws during lookup still surfaces as an engine fault.
func (g *Goja) HasGlobal(name string) (bool, error) {
	if g.vm == nil {
		return false, errors.NotInitialized(errors.PhaseExecute, "engine")
	}
	v, err := g.vm.RunString("typeof " + name)
	if err != nil {
		return false, g.mapError(err, name)
	}
	return v.String() != "undefined", nil
}

func (g *Goja) Name() string {
	return "goja"
}

func (g *Goja) Version() string {
	return gojaModuleVersion()
}

// Close releases the runtime. goja has no explicit teardown; dropping the
// reference is sufficient.
func (g *Goja) Close() error {
	g.vm = nil
	return nil
}

// mapError converts a goja error into a structured engine fault with
// position and source context. Non-fault errors pass through unchanged.
func (g *Goja) mapError(err error, code string) error {
	if err == nil {
		return nil
	}

	ee := &errors.EngineError{
		Category:      "runtime",
		EngineName:    g.Name(),
		EngineVersion: g.Version(),
		Cause:         err,
	}

	full := err.Error()
	var exc *goja.Exception
	if stderrors.As(err, &exc) {
		full = exc.String()
		if obj, ok := exc.Value().(*goja.Object); ok && obj != nil {
			if nv := obj.Get("name"); nv != nil && !goja.IsUndefined(nv) {
				ee.Code = nv.String()
			}
		}
	}
	var syntaxErr *goja.CompilerSyntaxError
	if stderrors.As(err, &syntaxErr) {
		ee.Code = "SyntaxError"
		ee.Category = "compile"
	}

	msg, rest, _ := strings.Cut(full, "\n")
	ee.Message = strings.TrimSpace(msg)
	if ee.Code == "" {
		if name, _, found := strings.Cut(ee.Message, ":"); found {
			ee.Code = strings.TrimSpace(name)
		}
	}

	// Position comes from the innermost stack frame; fall back to the
	// message itself for compiler errors, which have no stack.
	ee.Line, ee.Column = parsePosition(rest)
	if ee.Line == 0 {
		ee.Line, ee.Column = parsePosition(full)
	}
	ee.Source = sourceLine(code, ee.Line)

	return ee
}

var (
	framePattern   = regexp.MustCompile(`:(\d+):(\d+)`)
	compilePattern = regexp.MustCompile(`Line (\d+):(\d+)`)
)

// parsePosition extracts line and column from a goja stack fragment such
// as "at <eval>:3:14(8)" or a compiler message such as "Line 1:10".
func parsePosition(s string) (line, column int) {
	m := compilePattern.FindStringSubmatch(s)
	if m == nil {
		m = framePattern.FindStringSubmatch(s)
	}
	if m == nil {
		return 0, 0
	}
	line, _ = strconv.Atoi(m[1])
	column, _ = strconv.Atoi(m[2])
	return line, column
}

// sourceLine returns the offending line of the executed script, trimmed.
func sourceLine(code string, line int) string {
	if line <= 0 {
		return ""
	}
	lines := strings.Split(code, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[line-1])
}

var (
	gojaVersionOnce sync.Once
	gojaVersion     = "unknown"
)

// gojaModuleVersion reads the goja module version from build metadata once
// per process.
func gojaModuleVersion() string {
	gojaVersionOnce.Do(func() {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, dep := range bi.Deps {
			if dep.Path == "github.com/dop251/goja" {
				gojaVersion = dep.Version
				return
			}
		}
	})
	return gojaVersion
}
