package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	reactruntime "github.com/wippyai/react-runtime"
	"github.com/wippyai/react-runtime/errors"
)

// Guest ABI: the interpreter module must export these functions plus a
// linear memory. qjs_eval returns (ptr<<32)|len of a JSON result envelope
// allocated inside the guest.
const (
	guestAlloc = "qjs_alloc"
	guestFree  = "qjs_free"
	guestEval  = "qjs_eval"
)

// Compile-time check that Wasm implements the Engine capability set
var _ reactruntime.Engine = (*Wasm)(nil)

// Wasm is an Engine backed by a JavaScript interpreter compiled to
// WebAssembly and executed under wazero. The guest evaluates scripts and
// reports results through a JSON envelope, so the host stays independent
// of the interpreter's internals.
//
// Like every Engine it is NOT safe for concurrent use.
type Wasm struct {
	ctx     context.Context
	runtime wazero.Runtime
	mod     api.Module
	allocFn api.Function
	freeFn  api.Function
	evalFn  api.Function
	version string
}

// NewWasm compiles and instantiates the interpreter guest.
func NewWasm(ctx context.Context, guest []byte) (*Wasm, error) {
	r := wazero.NewRuntime(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	mod, err := r.InstantiateWithConfig(ctx, guest, wazero.NewModuleConfig().WithName("qjs"))
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("instantiate guest: %w", err)
	}

	w := &Wasm{
		ctx:     ctx,
		runtime: r,
		mod:     mod,
		allocFn: mod.ExportedFunction(guestAlloc),
		freeFn:  mod.ExportedFunction(guestFree),
		evalFn:  mod.ExportedFunction(guestEval),
	}
	if w.allocFn == nil || w.freeFn == nil || w.evalFn == nil {
		r.Close(ctx)
		return nil, fmt.Errorf("guest does not export %s/%s/%s", guestAlloc, guestFree, guestEval)
	}

	return w, nil
}

// evalEnvelope is the result contract with the guest.
type evalEnvelope struct {
	OK    bool            `json:"ok"`
	Value json.RawMessage `json:"value"`
	Error *guestFault     `json:"error"`
}

type guestFault struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Source  string `json:"source"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func (w *Wasm) Run(code string) error {
	_, err := w.eval(code)
	return err
}

func (w *Wasm) Evaluate(code string) (any, error) {
	raw, err := w.eval(code)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode guest value: %w", err)
	}
	return v, nil
}

func (w *Wasm) Invoke(fn string, args ...any) (any, error) {
	encoded := make([]byte, 0, 64)
	encoded = append(encoded, fn...)
	encoded = append(encoded, '(')
	for i, a := range args {
		if i > 0 {
			encoded = append(encoded, ',')
		}
		j, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("encode argument %d: %w", i, err)
		}
		encoded = append(encoded, j...)
	}
	encoded = append(encoded, ')')
	return w.Evaluate(string(encoded))
}

func (w *Wasm) HasGlobal(name string) (bool, error) {
	v, err := w.Evaluate("typeof " + name + ` !== "undefined"`)
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

func (w *Wasm) Name() string {
	return "quickjs-wasm"
}

// Version asks the guest for its interpreter version once and memoizes it.
func (w *Wasm) Version() string {
	if w.version == "" {
		v, err := w.Evaluate(`typeof __qjs_version === "string" ? __qjs_version : "unknown"`)
		if err != nil {
			w.version = "unknown"
		} else if s, ok := v.(string); ok && s != "" {
			w.version = s
		} else {
			w.version = "unknown"
		}
	}
	return w.version
}

func (w *Wasm) Close() error {
	if w.runtime == nil {
		return nil
	}
	err := w.runtime.Close(w.ctx)
	w.runtime = nil
	w.mod = nil
	return err
}

// eval ships code into guest memory, runs it, and decodes the envelope.
func (w *Wasm) eval(code string) (json.RawMessage, error) {
	if w.mod == nil {
		return nil, errors.NotInitialized(errors.PhaseExecute, "engine")
	}

	n := uint64(len(code))
	res, err := w.allocFn.Call(w.ctx, n)
	if err != nil {
		return nil, fmt.Errorf("guest alloc: %w", err)
	}
	ptr := res[0]
	if !w.mod.Memory().Write(uint32(ptr), []byte(code)) {
		return nil, fmt.Errorf("write script out of bounds: ptr=%d len=%d", ptr, n)
	}

	out, callErr := w.evalFn.Call(w.ctx, ptr, n)
	if _, err := w.freeFn.Call(w.ctx, ptr, n); err != nil {
		Logger().Warn("guest free failed after eval",
			zap.Uint64("ptr", ptr),
			zap.Error(err))
	}
	if callErr != nil {
		// A trap is a fault with no position information.
		return nil, &errors.EngineError{
			Message:       "guest trap: " + callErr.Error(),
			Category:      "trap",
			EngineName:    w.Name(),
			EngineVersion: w.version,
			Cause:         callErr,
		}
	}

	packed := out[0]
	rptr := uint32(packed >> 32)
	rlen := uint32(packed)
	data, ok := w.mod.Memory().Read(rptr, rlen)
	if !ok {
		return nil, fmt.Errorf("read result out of bounds: ptr=%d len=%d", rptr, rlen)
	}
	// The view is only valid until the guest reuses the allocation.
	payload := make([]byte, len(data))
	copy(payload, data)
	if _, err := w.freeFn.Call(w.ctx, uint64(rptr), uint64(rlen)); err != nil {
		Logger().Warn("guest free failed for result",
			zap.Uint32("ptr", rptr),
			zap.Error(err))
	}

	var env evalEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode guest envelope: %w", err)
	}
	if !env.OK {
		fault := env.Error
		if fault == nil {
			fault = &guestFault{Message: "unknown guest fault"}
		}
		return nil, &errors.EngineError{
			Message:       fault.Message,
			Code:          fault.Code,
			Category:      "runtime",
			Source:        fault.Source,
			Line:          fault.Line,
			Column:        fault.Column,
			EngineName:    w.Name(),
			EngineVersion: w.version,
		}
	}
	return env.Value, nil
}
