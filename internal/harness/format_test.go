package harness

import (
	"testing"

	"github.com/cupcake-policy/cupcake/internal/decision"
	"github.com/cupcake-policy/cupcake/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_DangerousCommandBlocked(t *testing.T) {
	raw := decision.Raw{
		Verb: decision.VerbDeny,
		Deny: &decision.Deny{RuleID: "protect-cupcake-dir", Reason: "refuses to remove .cupcake/"},
	}
	resp, err := Format(event.HarnessClaudeCode, event.ClaudePreToolUse, raw)
	require.NoError(t, err)
	require.NotNil(t, resp.Continue)
	assert.False(t, *resp.Continue)
	assert.Contains(t, resp.StopReason, ".cupcake")
}

func TestFormat_ContextAggregation(t *testing.T) {
	raw := decision.Raw{Verb: decision.VerbAllow, Context: []string{"first", "second"}}
	resp, err := Format(event.HarnessClaudeCode, event.ClaudeUserPromptSubmit, raw)
	require.NoError(t, err)
	out, ok := resp.HookSpecificOutput.(contextHookOutput)
	require.True(t, ok)
	assert.Equal(t, "first\nsecond", out.AdditionalContext)
}

func TestFormat_HaltIsUniversalAcrossEventKinds(t *testing.T) {
	raw := decision.Raw{Verb: decision.VerbHalt, Halt: &decision.Halt{RuleID: "r", Reason: "stop everything"}}

	for _, k := range []event.Kind{event.ClaudeSessionStart, event.ClaudeNotification, event.ClaudePreToolUse} {
		resp, err := Format(event.HarnessClaudeCode, k, raw)
		require.NoError(t, err)
		require.NotNil(t, resp.Continue)
		assert.False(t, *resp.Continue)
		assert.Equal(t, "stop everything", resp.StopReason)
	}
}

func TestCoerceContextOnly_NeverCarriesBlock(t *testing.T) {
	// This test exists to document the compile-time guarantee: ContextOnlyOutcome
	// has no constructor path that can produce a BlockOutcome, so there is no
	// runtime branch to test for "block leaking into SessionStart" — the type
	// system removes the bug class entirely. CoerceContextOnly always returns
	// an AllowOutcome regardless of the verb in Raw.
	raw := decision.Raw{Verb: decision.VerbBlock, Block: &decision.Block{RuleID: "x", Reason: "y"}}
	out := CoerceContextOnly(raw)
	_, isAllow := out.(AllowOutcome)
	assert.True(t, isAllow)
}

func TestFormat_NotificationNeverBlocksOrCarriesContext(t *testing.T) {
	raw := decision.Raw{Verb: decision.VerbAllow, Context: []string{"ignored"}}
	resp, err := Format(event.HarnessClaudeCode, event.ClaudeNotification, raw)
	require.NoError(t, err)
	assert.Nil(t, resp.HookSpecificOutput)
	assert.Empty(t, resp.Decision)
}
