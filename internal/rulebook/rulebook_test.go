package rulebook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
signals:
  git_status:
    command: git
    args: ["status", "--porcelain"]
    timeout: 5s
  environment:
    static: production
actions:
  on_any_denial:
    - command: notify-deny.sh
  by_rule_id:
    no-force-push:
      - command: alert.sh
builtins:
  protected_paths:
    paths: ["/etc", "/root"]
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rulebook.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesSignalsActionsBuiltins(t *testing.T) {
	path := writeTemp(t, sampleYAML)
	rb, err := Load(path)
	require.NoError(t, err)

	require.Contains(t, rb.Signals, "git_status")
	assert.True(t, rb.Signals["git_status"].IsDynamic())
	assert.Equal(t, []string{"status", "--porcelain"}, rb.Signals["git_status"].Args)

	require.Contains(t, rb.Signals, "environment")
	assert.False(t, rb.Signals["environment"].IsDynamic())
	require.NotNil(t, rb.Signals["environment"].Static)
	assert.Equal(t, "production", *rb.Signals["environment"].Static)

	require.Len(t, rb.Actions.OnAnyDenial, 1)
	require.Contains(t, rb.Actions.ByRuleID, "no-force-push")

	require.Contains(t, rb.Builtins, "protected_paths")
}

func TestValidateRejectsAmbiguousSignal(t *testing.T) {
	rb := Empty()
	rb.Signals["bad"] = SignalDef{} // neither static nor command
	err := rb.Validate()
	require.Error(t, err)
	var invalid *InvalidSignalError
	assert.ErrorAs(t, err, &invalid)
}

func TestMergeGlobalAdditiveOverProject(t *testing.T) {
	projVal := "project-value"
	globalVal := "global-value"
	project := Empty()
	project.Signals["only_project"] = SignalDef{Static: &projVal}
	project.Signals["shared"] = SignalDef{Static: &projVal}
	project.Builtins["b"] = BuiltinConfig{"k": "project"}

	global := Empty()
	global.Signals["only_global"] = SignalDef{Static: &globalVal}
	global.Signals["shared"] = SignalDef{Static: &globalVal}
	global.Builtins["b"] = BuiltinConfig{"k": "global"}

	merged := Merge(global, project)
	assert.Contains(t, merged.Signals, "only_project")
	assert.Contains(t, merged.Signals, "only_global")
	// Global wins on a same-key signal (global is higher authority).
	assert.Equal(t, globalVal, *merged.Signals["shared"].Static)
	// Global builtin config overrides project's same-key entry.
	assert.Equal(t, "global", merged.Builtins["b"]["k"])
}

func TestDiscoverScriptsMissingDirIsNotError(t *testing.T) {
	dir := t.TempDir()
	scripts, err := DiscoverScripts(dir)
	require.NoError(t, err)
	assert.Empty(t, scripts)
}

func TestDiscoverScriptsFindsFiles(t *testing.T) {
	dir := t.TempDir()
	signalsDir := filepath.Join(dir, ".cupcake", "signals")
	require.NoError(t, os.MkdirAll(signalsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(signalsDir, "check.sh"), []byte("#!/bin/sh\n"), 0o755))

	scripts, err := DiscoverScripts(dir)
	require.NoError(t, err)
	assert.Contains(t, scripts, filepath.Join(".cupcake/signals", "check.sh"))
}
