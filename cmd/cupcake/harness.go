package main

import (
	"fmt"
	"strings"

	"github.com/cupcake-policy/cupcake/internal/event"
)

// parseHarness maps the --harness flag value to the internal Harness
// constant. "" defaults to claude-code, Cupcake's primary target.
func parseHarness(name string) (event.Harness, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "claude-code", "claude":
		return event.HarnessClaudeCode, nil
	case "cursor":
		return event.HarnessCursor, nil
	case "opencode":
		return event.HarnessOpenCode, nil
	case "factory":
		return event.HarnessFactory, nil
	default:
		return "", fmt.Errorf("unknown --harness %q (want claude-code, cursor, opencode, or factory)", name)
	}
}
