package preprocess

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcake-policy/cupcake/internal/event"
)

func nopLog() zerolog.Logger { return zerolog.Nop() }

func withCommand(cmd string) *event.Envelope {
	input, _ := json.Marshal(map[string]string{"command": cmd})
	return &event.Envelope{Harness: event.HarnessClaudeCode, Kind: event.ClaudePreToolUse, ToolInput: input}
}

func commandOf(t *testing.T, env *event.Envelope) string {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(env.ToolInput, &m))
	s, _ := m["command"].(string)
	return s
}

func TestWhitespaceNormalization(t *testing.T) {
	env := withCommand("rm  -rf /etc")
	out := Process(nopLog(), env, DefaultOptions())
	assert.Equal(t, "rm -rf /etc", commandOf(t, out))
	assert.Equal(t, "rm  -rf /etc", out.Preprocessing.OriginalCommand)
}

func TestWhitespaceNormalization_Idempotent(t *testing.T) {
	once := Process(nopLog(), withCommand("rm    -rf  .cupcake/"), DefaultOptions())
	twice := Process(nopLog(), once, DefaultOptions())
	assert.Equal(t, commandOf(t, once), commandOf(t, twice))
}

func TestCollapseWhitespace_Idempotent(t *testing.T) {
	cases := []string{"rm  -rf /etc", "  leading and trailing  ", "a\t\tb   c", "already normal"}
	for _, c := range cases {
		once := collapseWhitespace(c)
		twice := collapseWhitespace(once)
		assert.Equal(t, once, twice, "collapseWhitespace must be idempotent for %q", c)
	}
}

func TestScriptInspection_SingleQuoted(t *testing.T) {
	env := withCommand("bash -c 'rm -rf /etc'")
	out := Process(nopLog(), env, DefaultOptions())
	assert.Equal(t, "rm -rf /etc", out.Preprocessing.InspectedScript)
}

func TestScriptInspection_DoubleQuoted(t *testing.T) {
	env := withCommand(`python3 -c "print(1)"`)
	out := Process(nopLog(), env, DefaultOptions())
	assert.Equal(t, "print(1)", out.Preprocessing.InspectedScript)
}

func TestScriptInspection_Unquoted(t *testing.T) {
	env := withCommand("sh -c echo hi")
	out := Process(nopLog(), env, DefaultOptions())
	assert.Equal(t, "echo hi", out.Preprocessing.InspectedScript)
}

func TestScriptInspection_NotAScript(t *testing.T) {
	env := withCommand("ls -la")
	out := Process(nopLog(), env, DefaultOptions())
	assert.Empty(t, out.Preprocessing.InspectedScript)
}

func TestSymlinkResolution_MissingFileStillGetsResolvedPath(t *testing.T) {
	dir := t.TempDir()
	input, _ := json.Marshal(map[string]string{"file_path": "does-not-exist.txt"})
	env := &event.Envelope{CWD: dir, ToolInput: input}
	out := Process(nopLog(), env, DefaultOptions())
	require.NotEmpty(t, out.Preprocessing.ResolvedFilePath)
	assert.Equal(t, filepath.Join(dir, "does-not-exist.txt"), out.Preprocessing.ResolvedFilePath)
	assert.False(t, out.Preprocessing.IsSymlink)
}

func TestSymlinkResolution_FollowsChain(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o600))
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	input, _ := json.Marshal(map[string]string{"file_path": "link.txt"})
	env := &event.Envelope{CWD: dir, ToolInput: input}
	out := Process(nopLog(), env, DefaultOptions())

	resolvedTarget, _ := filepath.EvalSymlinks(target)
	assert.Equal(t, resolvedTarget, out.Preprocessing.ResolvedFilePath)
	assert.True(t, out.Preprocessing.IsSymlink)
}

func TestSymlinkResolution_DanglingReportsReadlinkTarget(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "dangling.txt")
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone.txt"), link))

	input, _ := json.Marshal(map[string]string{"file_path": "dangling.txt"})
	env := &event.Envelope{CWD: dir, ToolInput: input}
	out := Process(nopLog(), env, DefaultOptions())

	assert.Equal(t, filepath.Join(dir, "gone.txt"), out.Preprocessing.ResolvedFilePath)
	assert.True(t, out.Preprocessing.IsSymlink)
}

func TestProcess_NeverFails(t *testing.T) {
	env := &event.Envelope{ToolInput: json.RawMessage(`not json`)}
	require.NotPanics(t, func() {
		Process(nopLog(), env, DefaultOptions())
	})
}
