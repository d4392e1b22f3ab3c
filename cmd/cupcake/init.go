package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initRulebookTemplate = `# Cupcake rulebook.
#
# signals declares named values the Signal Gatherer resolves before a
# policy evaluates; a signal either runs a command or returns a static
# literal.
#
# signals:
#   git_status:
#     command: .cupcake/signals/git_status.sh
#     timeout: 5s
#
# actions groups fire-and-forget commands run after a decision is
# synthesized.
#
# actions:
#   on_any_denial:
#     - command: .cupcake/actions/notify.sh

signals: {}
actions: {}
builtins: {}
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a .cupcake directory in the current project",
	Long: `Create .cupcake/ with the directory layout every other subcommand
expects: policies/global and policies/project for Rego sources,
signals/ and actions/ for trusted scripts, trust/ for the signed
manifest, and a starter rulebook.yml.

Safe to run more than once — existing files and directories are left
untouched.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	cupcakeDir := filepath.Join(root, ".cupcake")

	dirs := []string{
		filepath.Join(cupcakeDir, globalPoliciesDir),
		filepath.Join(cupcakeDir, projectPoliciesDir),
		filepath.Join(cupcakeDir, "signals"),
		filepath.Join(cupcakeDir, "actions"),
		filepath.Join(cupcakeDir, "trust"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("init: creating %s: %w", d, err)
		}
	}

	rulebookPath := filepath.Join(cupcakeDir, projectRulebookName)
	if _, err := os.Stat(rulebookPath); os.IsNotExist(err) {
		if err := os.WriteFile(rulebookPath, []byte(initRulebookTemplate), 0o644); err != nil {
			return fmt.Errorf("init: writing %s: %w", rulebookPath, err)
		}
	}

	fmt.Fprintf(os.Stdout, "initialized %s\n", cupcakeDir)
	return nil
}
