package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var evalFlags struct {
	harness string
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate one hook event read from stdin",
	Long: `Read one event as JSON on stdin, evaluate it against the project's
compiled policies, and write the resulting decision as JSON on stdout.

Diagnostics go to stderr; stdout carries only the final decision, so a hook
harness can pipe eval's output directly back into its own response channel.

Examples:
  cupcake eval --harness claude-code < event.json
  cupcake eval --trace eval,wasm < event.json`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalFlags.harness, "harness", "claude-code",
		"source harness: claude-code, cursor, opencode, factory")
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading event from stdin: %w", err)
	}

	eng, err := buildEngine(ctx, evalFlags.harness)
	if err != nil {
		return err
	}
	defer eng.Close(ctx)

	resp, err := eng.Eval(ctx, raw)
	if err != nil {
		return err
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshaling response: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
