package cliconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDegradesOnMissingHome(t *testing.T) {
	t.Setenv("HOME", "")
	t.Setenv("USERPROFILE", "")
	d := Load()
	assert.Equal(t, Defaults{}, d)
}

func TestLoadParsesValidFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".cupcake")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := `
log_level = "debug"
trace_modules = "eval,routing"
wasm_max_memory = "20MB"
debug_files = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defaults.toml"), []byte(content), 0o644))

	d := Load()
	assert.Equal(t, "debug", d.LogLevel)
	assert.Equal(t, "eval,routing", d.TraceModules)
	assert.Equal(t, "20MB", d.WASMMaxMemory)
	assert.True(t, d.DebugFiles)
}

func TestLoadDegradesOnMalformedFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".cupcake")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defaults.toml"), []byte("not = valid = toml ["), 0o644))

	d := Load()
	assert.Equal(t, Defaults{}, d)
}
