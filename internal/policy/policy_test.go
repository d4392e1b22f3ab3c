package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcake-policy/cupcake/internal/event"
)

const sampleUnitSource = `# METADATA
# scope: package
# custom:
#   required_events: ["PreToolUse"]
#   required_tools: ["Bash"]
#   required_signals: ["git_status"]
package cupcake.policies.bash_guard

import future.keywords.if
import future.keywords.contains

deny contains msg if {
	input.tool_name == "Bash"
	msg := "blocked"
}
`

func TestLoadParsesRoutingMetadata(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bash_guard.rego"), []byte(sampleUnitSource), 0o644))

	units, err := Load(dir, NamespaceProject)
	require.NoError(t, err)
	require.Len(t, units, 1)

	u := units[0]
	assert.Equal(t, "cupcake.policies.bash_guard", u.Name)
	assert.True(t, u.RequiredEvents[event.ClaudePreToolUse])
	assert.True(t, u.RequiredTools["Bash"])
	assert.True(t, u.RequiredSignals["git_status"])
	assert.NoError(t, u.Validate())
}

func TestLoadRejectsPolicyMissingRequiredEvents(t *testing.T) {
	dir := t.TempDir()
	noMetadata := `package cupcake.policies.bare

deny contains msg if {
	msg := "x"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bare.rego"), []byte(noMetadata), 0o644))

	units, err := Load(dir, NamespaceProject)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Error(t, units[0].Validate())
}

func TestStringListToleratesWrongType(t *testing.T) {
	assert.Nil(t, stringList(nil))
	assert.Nil(t, stringList("not-a-list"))
	assert.Equal(t, []string{"a"}, stringList([]interface{}{"a", 7}))
}
