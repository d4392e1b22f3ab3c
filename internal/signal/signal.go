// Package signal implements the Signal Gatherer: concurrent execution of
// whitelisted external commands (and lookup of static/builtin values),
// aggregated into the map the WASM Runtime exposes as input.signals.
package signal

import (
	"time"
)

// DefaultTimeout and DefaultOutputCap are the baseline limits applied when
// a signal or Gatherer doesn't override them, overridable per-signal
// (timeout) or per-Gatherer (output cap).
const (
	DefaultTimeout   = 10 * time.Second
	DefaultOutputCap = 1 << 20 // 1 MiB
)

// FailureResult is the shape a dynamic signal's value takes when its
// command fails, times out, or is rejected by the Trust Verifier: { "exit_code",
// "output", "error", "success" }, matching field names exactly so Rego
// policies can inspect them without a Go-side schema.
type FailureResult struct {
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output"`
	Error    string `json:"error"`
	Success  bool   `json:"success"`
}

// builtinResolver produces a builtin-generated signal value. Implementations
// live in builtin.go; the Gatherer looks one up by name.
type builtinResolver func(g *Gatherer, sessionID string) (interface{}, error)
