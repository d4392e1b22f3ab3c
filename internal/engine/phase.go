package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cupcake-policy/cupcake/internal/decision"
	"github.com/cupcake-policy/cupcake/internal/policy"
	"github.com/cupcake-policy/cupcake/internal/wasmrt"
)

// evalTimeout bounds one phase's evaluate call. The module is loaded with
// wazero's WithCloseOnContextDone, so an expired deadline aborts a divergent
// policy in place of fuel metering.
const evalTimeout = 10 * time.Second

// phase owns one compiled-and-instantiated WASM module for one evaluation
// phase (global or project). A phase with no policy units is represented
// as a nil *phase — the caller never compiles or loads a module for an
// empty phase.
type phase struct {
	name   string
	module *wasmrt.Module
	mu     sync.Mutex // wazero does not allow a module's exported functions to be called concurrently
}

// newPhase compiles units (if any) into a WASM module via the opa binary
// at opaPath and loads it into wazero. Zero units for a phase is not an
// error: newPhase returns a nil *phase, and the engine simply never runs
// that phase.
func newPhase(ctx context.Context, name, opaPath string, units []*policy.Unit, entrypoint string, maxMemory uint32) (*phase, error) {
	if len(units) == 0 {
		return nil, nil
	}
	if opaPath == "" {
		return nil, fmt.Errorf("engine: %s phase has %d polic%s but no --opa-path was configured to compile them", name, len(units), plural(len(units)))
	}

	wasmBytes, err := policy.CompileBundle(ctx, opaPath, units, entrypoint)
	if err != nil {
		return nil, fmt.Errorf("engine: compiling %s phase: %w", name, err)
	}

	mod, err := wasmrt.Load(ctx, name, wasmBytes, wasmrt.Config{MaxMemoryBytes: maxMemory})
	if err != nil {
		return nil, fmt.Errorf("engine: loading %s phase module: %w", name, err)
	}

	return &phase{name: name, module: mod}, nil
}

// Eval marshals input, calls the phase's evaluate entrypoint, and parses
// the returned Decision Set. A nil phase must never have Eval called on
// it — the engine guards every call site with a units-present check.
func (p *phase) Eval(ctx context.Context, input wasmInput) (decision.Set, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return decision.Set{}, fmt.Errorf("engine: marshaling %s phase input: %w", p.name, err)
	}

	p.mu.Lock()
	evalCtx, cancel := context.WithTimeout(ctx, evalTimeout)
	out, err := p.module.Eval(evalCtx, p.name, data)
	cancel()
	p.mu.Unlock()
	if err != nil {
		return decision.Set{}, err
	}

	var set decision.Set
	if err := json.Unmarshal(out, &set); err != nil {
		return decision.Set{}, fmt.Errorf("engine: parsing %s phase decision set: %w", p.name, err)
	}
	return set, nil
}

// Close tears down the phase's WASM module.
func (p *phase) Close(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.module.Close(ctx)
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
