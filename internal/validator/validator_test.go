package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcake-policy/cupcake/internal/decision"
	"github.com/cupcake-policy/cupcake/internal/event"
)

const sampleRego = `
package cupcake.policies.bash_guard

import future.keywords.if
import future.keywords.contains

deny contains msg if {
	input.tool_name == "Bash"
	msg := "blocked"
}

ask contains msg if {
	input.tool_name == "Bash"
	msg := "confirm?"
}

add_context contains msg if {
	msg := "fyi"
}

not_a_verb[x] = y if {
	x := "a"
	y := "b"
}
`

func TestScanFileFindsVerbRuleHeads(t *testing.T) {
	rules, err := ScanFile("bash_guard.rego", sampleRego)
	require.NoError(t, err)

	verbs := map[string]int{}
	for _, r := range rules {
		verbs[r.Verb]++
	}
	assert.Equal(t, 1, verbs["deny"])
	assert.Equal(t, 1, verbs["ask"])
	assert.Equal(t, 1, verbs["add_context"])
	assert.Equal(t, 0, verbs["not_a_verb"])
}

func TestCheckCompatibilityFlagsIllegalVerb(t *testing.T) {
	rules := []VerbRule{{Verb: "ask", Line: 4}, {Verb: "deny", Line: 1}}

	caps := func(k event.Kind) decision.Capabilities {
		// PostToolUse supports deny in none of this matrix's rows, and
		// ask is PreToolUse-only everywhere.
		return decision.Capabilities{Block: true, Context: true}
	}

	diags := CheckCompatibility("bash_guard.rego", rules, []event.Kind{event.ClaudePostToolUse}, caps)
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, event.ClaudePostToolUse, d.Event)
	}
}

func TestCheckCompatibilityAllowsLegalVerbs(t *testing.T) {
	rules := []VerbRule{{Verb: "deny", Line: 1}, {Verb: "ask", Line: 2}}
	caps := func(k event.Kind) decision.Capabilities {
		return decision.Capabilities{Deny: true, Ask: true, AllowOverride: true}
	}

	diags := CheckCompatibility("bash_guard.rego", rules, []event.Kind{event.ClaudePreToolUse}, caps)
	assert.Empty(t, diags)
}

func TestCheckCompatibilityHaltAlwaysLegal(t *testing.T) {
	rules := []VerbRule{{Verb: "halt", Line: 1}}
	caps := func(k event.Kind) decision.Capabilities {
		return decision.Capabilities{}
	}
	diags := CheckCompatibility("any.rego", rules, []event.Kind{event.ClaudeNotification}, caps)
	assert.Empty(t, diags)
}
