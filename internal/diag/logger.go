// Package diag provides the structured, stderr-only diagnostic logging used
// by every internal package: a thin wrapper over zerolog gated by
// per-module trace selection and a minimum log level, plus a correlation ID
// and per-session activity trace sink threaded through one evaluation.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Module names a tracing concern. Passed via --trace as a comma-separated
// list; "all" enables every module.
type Module string

const (
	ModuleEval      Module = "eval"
	ModuleSignals   Module = "signals"
	ModuleWasm      Module = "wasm"
	ModuleSynthesis Module = "synthesis"
	ModuleRouting   Module = "routing"
	ModuleAll       Module = "all"
)

var knownModules = map[Module]bool{
	ModuleEval: true, ModuleSignals: true, ModuleWasm: true,
	ModuleSynthesis: true, ModuleRouting: true, ModuleAll: true,
}

// ParseModules parses a --trace value into a set. An empty string yields an
// empty (all-disabled) set, not an error.
func ParseModules(csv string) (map[Module]bool, error) {
	set := make(map[Module]bool)
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return set, nil
	}
	for _, part := range strings.Split(csv, ",") {
		m := Module(strings.TrimSpace(part))
		if !knownModules[m] {
			return nil, fmt.Errorf("diag: unknown trace module %q", part)
		}
		set[m] = true
	}
	return set, nil
}

// Options configures the root logger.
type Options struct {
	Level   zerolog.Level
	Modules map[Module]bool
	Writer  io.Writer // defaults to os.Stderr when nil
}

// New builds the root logger. All output goes to Writer (stderr by
// default) so stdout remains reserved for the engine's JSON response.
func New(opts Options) zerolog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).Level(opts.Level).With().Timestamp().Logger()
}

// ForModule returns a logger scoped to module. When the module was not
// selected via --trace (and "all" was not selected either), the returned
// logger is disabled: every call is a no-op, at negligible cost.
func ForModule(base zerolog.Logger, modules map[Module]bool, m Module) zerolog.Logger {
	if modules[ModuleAll] || modules[m] {
		return base.With().Str("module", string(m)).Logger()
	}
	return base.Level(zerolog.Disabled)
}
