// Package wasmrt sandboxes execution of a compiled policy bundle's
// aggregation entrypoint using wazero, a pure-Go WebAssembly runtime (no
// cgo, unlike wasmtime/wasmer bindings — see DESIGN.md for why that
// mattered for this corpus).
package wasmrt

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// Memory bounds: a hard minimum of 1 MiB (anything configured lower is
// clamped up) and a hard maximum of 100 MiB (anything higher is clamped
// down).
const (
	MinMemoryBytes     uint32 = 1 << 20
	MaxMemoryBytes     uint32 = 100 << 20
	DefaultMemoryBytes uint32 = 10 << 20

	wasmPageSize uint32 = 65536
)

// ClampMemory enforces MinMemoryBytes/MaxMemoryBytes on a configured cap.
func ClampMemory(bytes uint32) uint32 {
	if bytes < MinMemoryBytes {
		return MinMemoryBytes
	}
	if bytes > MaxMemoryBytes {
		return MaxMemoryBytes
	}
	return bytes
}

// Config bounds one compiled module's resource usage.
type Config struct {
	// MaxMemoryBytes is clamped via ClampMemory before use; zero selects
	// DefaultMemoryBytes.
	MaxMemoryBytes uint32
}

func (c Config) memoryBytes() uint32 {
	if c.MaxMemoryBytes == 0 {
		return DefaultMemoryBytes
	}
	return ClampMemory(c.MaxMemoryBytes)
}

// The ABI every compiled policy bundle exports: alloc/dealloc manage
// linear-memory buffers for the host, and evaluate takes the (ptr, len) of
// an input JSON buffer and returns a packed ptr<<32|len i64 pointing at an
// output JSON buffer the host must dealloc after reading.
const (
	exportEvaluate = "evaluate"
	exportAlloc    = "alloc"
	exportDealloc  = "dealloc"
)

// Module is one compiled-and-instantiated WASM policy bundle.
type Module struct {
	runtime  wazero.Runtime
	mod      api.Module
	evaluate api.Function
	alloc    api.Function
	dealloc  api.Function
}

// TrapError wraps any failure wazero reports while instantiating or
// calling into the module — out-of-memory, an unreachable trap, a
// context-deadline abort standing in for fuel exhaustion, or a malformed
// return value. The caller (internal/engine) surfaces every TrapError as a
// fatal Halt for the phase.
type TrapError struct {
	Phase string
	Cause error
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("wasmrt: %s phase trapped: %v", e.Phase, e.Cause)
}

func (e *TrapError) Unwrap() error { return e.Cause }

// Load compiles and instantiates one WASM module. cfg.MaxMemoryBytes
// bounds its linear memory; wazero's WithCloseOnContextDone makes a
// canceled/expired ctx abort in-flight execution, standing in for a true
// fuel/instruction cap (wazero has no native fuel metering — see
// DESIGN.md for this resolution of an otherwise-unimplementable detail).
func Load(ctx context.Context, phase string, wasmBytes []byte, cfg Config) (*Module, error) {
	pages := cfg.memoryBytes() / wasmPageSize

	rtConfig := wazero.NewRuntimeConfig().
		WithMemoryLimitPages(pages).
		WithCloseOnContextDone(true)
	runtime := wazero.NewRuntimeWithConfig(ctx, rtConfig)

	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, &TrapError{Phase: phase, Cause: fmt.Errorf("compiling module: %w", err)}
	}

	instance, err := runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, &TrapError{Phase: phase, Cause: fmt.Errorf("instantiating module: %w", err)}
	}

	evaluate := instance.ExportedFunction(exportEvaluate)
	alloc := instance.ExportedFunction(exportAlloc)
	dealloc := instance.ExportedFunction(exportDealloc)
	if evaluate == nil || alloc == nil || dealloc == nil {
		_ = runtime.Close(ctx)
		return nil, &TrapError{Phase: phase, Cause: fmt.Errorf("module missing required export (%s/%s/%s)", exportEvaluate, exportAlloc, exportDealloc)}
	}

	return &Module{runtime: runtime, mod: instance, evaluate: evaluate, alloc: alloc, dealloc: dealloc}, nil
}

// Close tears down the module's runtime, freeing its linear memory.
func (m *Module) Close(ctx context.Context) error {
	return m.runtime.Close(ctx)
}

// Eval marshals inputJSON into the module's linear memory, calls the
// evaluate entrypoint, and reads back the output JSON it produced.
func (m *Module) Eval(ctx context.Context, phase string, inputJSON []byte) ([]byte, error) {
	inPtr, err := m.writeBuffer(ctx, phase, inputJSON)
	if err != nil {
		return nil, err
	}
	defer m.free(ctx, inPtr, uint32(len(inputJSON)))

	results, err := m.evaluate.Call(ctx, uint64(inPtr), uint64(len(inputJSON)))
	if err != nil {
		return nil, &TrapError{Phase: phase, Cause: err}
	}
	if len(results) != 1 {
		return nil, &TrapError{Phase: phase, Cause: fmt.Errorf("evaluate returned %d results, want 1", len(results))}
	}

	outPtr, outLen := unpackPtrLen(results[0])
	out, ok := m.mod.Memory().Read(outPtr, outLen)
	if !ok {
		return nil, &TrapError{Phase: phase, Cause: fmt.Errorf("evaluate returned out-of-bounds output (ptr=%d len=%d)", outPtr, outLen)}
	}
	// Copy out of linear memory before freeing it — Memory().Read returns
	// a view, not an owned copy.
	owned := make([]byte, len(out))
	copy(owned, out)
	m.free(ctx, outPtr, outLen)

	return owned, nil
}

func (m *Module) writeBuffer(ctx context.Context, phase string, data []byte) (uint32, error) {
	results, err := m.alloc.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, &TrapError{Phase: phase, Cause: fmt.Errorf("alloc: %w", err)}
	}
	ptr := uint32(results[0])
	if !m.mod.Memory().Write(ptr, data) {
		return 0, &TrapError{Phase: phase, Cause: fmt.Errorf("writing %d bytes at offset %d out of bounds", len(data), ptr)}
	}
	return ptr, nil
}

func (m *Module) free(ctx context.Context, ptr, length uint32) {
	_, _ = m.dealloc.Call(ctx, uint64(ptr), uint64(length))
}

func unpackPtrLen(packed uint64) (uint32, uint32) {
	return uint32(packed >> 32), uint32(packed & 0xffffffff)
}
