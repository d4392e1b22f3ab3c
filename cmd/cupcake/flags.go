package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cupcake-policy/cupcake/internal/diag"
)

// parseWASMMemory accepts "10MB", "512KB", or a bare byte count and returns
// the requested size in bytes, unclamped — internal/wasmrt clamps into
// [1 MiB, 100 MiB] at Config.memoryBytes() time, so this layer only parses
// the unit suffix.
func parseWASMMemory(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	upper := strings.ToUpper(s)
	multiplier := uint64(1)
	switch {
	case strings.HasSuffix(upper, "MB"):
		multiplier = 1 << 20
		upper = strings.TrimSuffix(upper, "MB")
	case strings.HasSuffix(upper, "KB"):
		multiplier = 1 << 10
		upper = strings.TrimSuffix(upper, "KB")
	case strings.HasSuffix(upper, "B"):
		upper = strings.TrimSuffix(upper, "B")
	}
	n, err := strconv.ParseUint(strings.TrimSpace(upper), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid --wasm-max-memory value %q: %w", s, err)
	}
	total := n * multiplier
	if total > uint64(^uint32(0)) {
		return ^uint32(0), nil
	}
	return uint32(total), nil
}

func parseLogLevel(s string) (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid --log-level value %q: %w", s, err)
	}
	return lvl, nil
}

// validateGlobalConfigPath enforces the flag's documented constraints: if
// set, it must be absolute, must exist, and must have a .yml/.yaml
// extension.
func validateGlobalConfigPath(path string) error {
	if path == "" {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("--global-config must be an absolute path, got %q", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yml" && ext != ".yaml" {
		return fmt.Errorf("--global-config must have a .yml or .yaml extension, got %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("--global-config: %w", err)
	}
	return nil
}

// validateOpaPath enforces the flag's documented constraints: if set, it
// must exist and must be executable.
func validateOpaPath(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("--opa-path: %w", err)
	}
	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("--opa-path %q is not executable", path)
	}
	return nil
}

// newRootLogger builds the stderr-only diag logger shared by every
// subcommand from the persistent --log-level/--trace flags.
func newRootLogger() (zerolog.Logger, map[diag.Module]bool, error) {
	level, err := parseLogLevel(globalFlags.logLevel)
	if err != nil {
		return zerolog.Logger{}, nil, err
	}
	modules, err := diag.ParseModules(globalFlags.trace)
	if err != nil {
		return zerolog.Logger{}, nil, err
	}
	if globalFlags.debugFiles {
		modules[diag.ModuleEval] = true
	}
	if globalFlags.debugRouting {
		modules[diag.ModuleRouting] = true
	}
	return diag.New(diag.Options{Level: level}), modules, nil
}
