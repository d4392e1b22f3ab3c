package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cupcake-policy/cupcake/internal/cliconfig"
)

// globalFlags holds every persistent flag, prefilled from
// ~/.cupcake/defaults.toml (via internal/cliconfig) before cobra applies
// whatever the command line actually passed.
var globalFlags struct {
	trace         string
	logLevel      string
	globalConfig  string
	wasmMaxMemory string
	debugFiles    bool
	debugRouting  bool
	opaPath       string
}

var rootCmd = &cobra.Command{
	Use:   "cupcake",
	Short: "Policy-enforcement engine for AI coding agent hooks",
	Long: `Cupcake evaluates AI coding agent hook events against Rego policies
compiled to WebAssembly and returns a structured allow/deny/ask decision.

It speaks the hook protocols of Claude Code, Cursor, OpenCode, and Factory:
one event in on stdin, one JSON decision out on stdout, diagnostics on
stderr.`,
}

// Execute runs the root command, exiting 1 on any command error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaults := cliconfig.Load()

	logLevel := defaults.LogLevel
	if logLevel == "" {
		logLevel = "info"
	}
	wasmMaxMemory := defaults.WASMMaxMemory
	if wasmMaxMemory == "" {
		wasmMaxMemory = "10MB"
	}

	rootCmd.PersistentFlags().StringVar(&globalFlags.trace, "trace", defaults.TraceModules,
		"comma-separated trace modules: eval,signals,wasm,synthesis,routing,all")
	rootCmd.PersistentFlags().StringVar(&globalFlags.logLevel, "log-level", logLevel,
		"minimum log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&globalFlags.globalConfig, "global-config", "",
		"absolute path to the host-wide rulebook (.yml/.yaml)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.wasmMaxMemory, "wasm-max-memory", wasmMaxMemory,
		"WASM linear memory cap per phase (e.g. 10MB, 512KB, or a bare byte count); clamped to [1MiB, 100MiB]")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.debugFiles, "debug-files", defaults.DebugFiles,
		"log every file path the engine touches")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.debugRouting, "debug-routing", defaults.DebugRouting,
		"log routing-map lookups")
	rootCmd.PersistentFlags().StringVar(&globalFlags.opaPath, "opa-path", "",
		"path to the opa binary used to compile policies to WASM")
}
