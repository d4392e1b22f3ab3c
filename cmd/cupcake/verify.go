package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cupcake-policy/cupcake/internal/decision"
	"github.com/cupcake-policy/cupcake/internal/event"
	"github.com/cupcake-policy/cupcake/internal/harness"
	"github.com/cupcake-policy/cupcake/internal/policy"
	"github.com/cupcake-policy/cupcake/internal/validator"
)

var verifyFlags struct {
	harness string
}

var verifyCmd = &cobra.Command{
	Use:     "verify [path]",
	Aliases: []string{"validate"},
	Short:   "Check policy files against the decision-event compatibility matrix",
	Long: `Parse every .rego file under path (default: .cupcake/policies), locate
each decision-verb rule, and confirm the verb is legal for every event kind
the policy's METADATA block routes it under.

Exits nonzero if any diagnostic is produced.

Examples:
  cupcake verify
  cupcake verify ./policies/project --harness cursor`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyFlags.harness, "harness", "claude-code",
		"harness whose compatibility matrix diagnostics are checked against")
}

func runVerify(cmd *cobra.Command, args []string) error {
	h, err := parseHarness(verifyFlags.harness)
	if err != nil {
		return err
	}

	dirs, err := verifyTargetDirs(args)
	if err != nil {
		return err
	}

	var diagnostics []validator.Diagnostic
	for _, dir := range dirs {
		ds, err := verifyDir(dir, h)
		if err != nil {
			return err
		}
		diagnostics = append(diagnostics, ds...)
	}

	for _, d := range diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if len(diagnostics) > 0 {
		return fmt.Errorf("verify: %d diagnostic(s) found", len(diagnostics))
	}
	fmt.Fprintln(os.Stdout, "verify: no compatibility issues found")
	return nil
}

func verifyTargetDirs(args []string) ([]string, error) {
	if len(args) == 1 {
		return []string{args[0]}, nil
	}
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, d := range []string{globalPoliciesDir, projectPoliciesDir} {
		full := filepath.Join(root, ".cupcake", d)
		if existingDir(full) != "" {
			dirs = append(dirs, full)
		}
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("verify: no policy directory found under .cupcake/policies; pass a path explicitly")
	}
	return dirs, nil
}

func verifyDir(dir string, h event.Harness) ([]validator.Diagnostic, error) {
	units, err := policy.Load(dir, policy.NamespaceProject)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	caps := func(k event.Kind) decision.Capabilities {
		return harness.CapabilitiesFor(h, k)
	}

	var diagnostics []validator.Diagnostic
	for _, u := range units {
		rules, err := validator.ScanFile(u.Name, u.Source)
		if err != nil {
			return nil, fmt.Errorf("verify: %w", err)
		}
		var routed []event.Kind
		for k := range u.RequiredEvents {
			routed = append(routed, k)
		}
		diagnostics = append(diagnostics, validator.CheckCompatibility(u.Name, rules, routed, caps)...)
	}
	return diagnostics, nil
}
