// Package cliconfig loads optional local overrides for CLI flag defaults:
// attempt a load, degrade silently to hardcoded defaults on any error
// (missing file, malformed TOML), and never block startup.
package cliconfig

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Defaults prefills CLI flag values. Every field is optional; a zero value
// means "use the flag's own built-in default".
type Defaults struct {
	LogLevel      string `toml:"log_level"`
	TraceModules  string `toml:"trace_modules"`
	WASMMaxMemory string `toml:"wasm_max_memory"`
	DebugFiles    bool   `toml:"debug_files"`
	DebugRouting  bool   `toml:"debug_routing"`
}

// Path returns the fixed location cliconfig reads from:
// ~/.cupcake/defaults.toml.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cupcake", "defaults.toml"), nil
}

// Load reads ~/.cupcake/defaults.toml. Any failure — no home directory,
// missing file, malformed TOML — yields a zero-value Defaults rather than
// an error: CLI flag defaults always have their own built-in fallback, so
// a broken local config file must never prevent the CLI from starting.
func Load() Defaults {
	path, err := Path()
	if err != nil {
		return Defaults{}
	}
	var d Defaults
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return Defaults{}
	}
	return d
}
