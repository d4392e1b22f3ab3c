package main

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cupcake-policy/cupcake/internal/rulebook"
	"github.com/cupcake-policy/cupcake/internal/trust"
)

var trustCmd = &cobra.Command{
	Use:   "trust",
	Short: "Manage the project's signed trust manifest for external scripts",
}

var trustInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new trust manifest covering every script-path signal and action",
	Long: `Scan the project rulebook for signal and action commands that name a
script path, hash each one, and write a freshly-signed manifest to
.cupcake/trust/manifest.json. Fails if a manifest already exists — use
"trust update" to re-sign after an intentional change.`,
	RunE: runTrustInit,
}

var trustUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Recompute and re-sign the trust manifest",
	Long: `Like "trust init", but overwrites an existing manifest. Run this after
editing a trusted script on purpose — the old manifest's hash for that
path will otherwise cause every future invocation to refuse it.`,
	RunE: runTrustUpdate,
}

var trustListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every script path recorded in the trust manifest",
	RunE:  runTrustList,
}

func init() {
	rootCmd.AddCommand(trustCmd)
	trustCmd.AddCommand(trustInitCmd, trustUpdateCmd, trustListCmd)
}

func runTrustInit(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	if _, err := os.Stat(trust.ManifestPath(root)); err == nil {
		return fmt.Errorf("trust: a manifest already exists at %s; use `cupcake trust update`", trust.ManifestPath(root))
	}
	return writeManifest(root)
}

func runTrustUpdate(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	return writeManifest(root)
}

func runTrustList(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	key, err := deriveTrustKey(root)
	if err != nil {
		return err
	}
	m, err := trust.Load(trust.ManifestPath(root), key)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(m.Entries))
	for p := range m.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Fprintf(os.Stdout, "%s  %s\n", m.Entries[p], p)
	}
	return nil
}

func writeManifest(root string) error {
	key, err := deriveTrustKey(root)
	if err != nil {
		return err
	}

	rb, err := loadRulebooks(root)
	if err != nil {
		return err
	}
	paths := scriptPathsOf(rb)

	m, err := trust.BuildManifest(root, paths)
	if err != nil {
		return err
	}
	if err := trust.Save(trust.ManifestPath(root), m, key); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "trust: signed %d script path(s) into %s\n", len(paths), trust.ManifestPath(root))
	return nil
}

// deriveTrustKey computes the host-bound HMAC key directly, bypassing
// bootstrap.go's trustKey (which tolerates a missing manifest by returning
// nil) — trust subcommands need the key unconditionally, manifest or not.
func deriveTrustKey(root string) ([]byte, error) {
	machineID, err := trust.ResolveMachineID()
	if err != nil {
		return nil, fmt.Errorf("resolving machine identity for trust verification: %w", err)
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolving executable path for trust verification: %w", err)
	}
	u, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("resolving current user for trust verification: %w", err)
	}
	return trust.DeriveKey(trust.KeyMaterial{
		MachineID:      machineID,
		ExecutablePath: exe,
		Username:       u.Username,
		ProjectRoot:    root,
	}), nil
}

// scriptPathsOf collects every command in the rulebook that names a script
// path (as opposed to a bare executable looked up on PATH), deduplicated
// and sorted for a stable manifest diff.
func scriptPathsOf(rb *rulebook.Rulebook) []string {
	seen := map[string]bool{}
	add := func(cmd string) {
		if cmd != "" && isScriptPath(cmd) {
			seen[filepath.Clean(cmd)] = true
		}
	}

	for _, def := range rb.Signals {
		add(def.Command)
	}
	for _, a := range rb.Actions.OnAnyDenial {
		add(a.Command)
	}
	for _, group := range rb.Actions.ByRuleID {
		for _, a := range group {
			add(a.Command)
		}
	}
	for _, group := range rb.Actions.ByEvent {
		for _, a := range group {
			add(a.Command)
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func isScriptPath(cmd string) bool {
	for i := 0; i < len(cmd); i++ {
		if cmd[i] == '/' {
			return true
		}
	}
	return false
}
