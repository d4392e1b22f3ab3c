package engine

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcake-policy/cupcake/internal/decision"
	"github.com/cupcake-policy/cupcake/internal/event"
)

func discardLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestEvalWithNoPoliciesShortCircuitsToAllow(t *testing.T) {
	e, err := New(context.Background(), Config{
		Harness: event.HarnessClaudeCode,
		Log:     discardLogger(),
	})
	require.NoError(t, err)

	raw := []byte(`{"hook_event_name":"PreToolUse","session_id":"s1","tool_name":"Bash","tool_input":{"command":"ls"}}`)
	resp, err := e.Eval(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, resp.Continue)
	assert.True(t, *resp.Continue)
}

func TestNewSucceedsWithEmptyPolicyDirAndNoOpaPath(t *testing.T) {
	dir := t.TempDir()
	_, err := New(context.Background(), Config{
		Harness:          event.HarnessClaudeCode,
		ProjectPolicyDir: dir, // directory exists but has zero .rego files
		Log:              discardLogger(),
	})
	// An empty directory yields zero units, so no phase is constructed and
	// the missing --opa-path is never an error — only a non-empty phase
	// requires a compiler.
	require.NoError(t, err)
}

func TestEvalRejectsUnparseableEvent(t *testing.T) {
	e, err := New(context.Background(), Config{
		Harness: event.HarnessClaudeCode,
		Log:     discardLogger(),
	})
	require.NoError(t, err)

	_, err = e.Eval(context.Background(), []byte(`not json`))
	assert.Error(t, err)
}

func TestRuleIDForEveryVerb(t *testing.T) {
	assert.Equal(t, "h", ruleIDFor(decision.Raw{Verb: decision.VerbHalt, Halt: &decision.Halt{RuleID: "h"}}))
	assert.Equal(t, "d", ruleIDFor(decision.Raw{Verb: decision.VerbDeny, Deny: &decision.Deny{RuleID: "d"}}))
	assert.Equal(t, "b", ruleIDFor(decision.Raw{Verb: decision.VerbBlock, Block: &decision.Block{RuleID: "b"}}))
	assert.Equal(t, "a", ruleIDFor(decision.Raw{Verb: decision.VerbAsk, Ask: &decision.Ask{RuleID: "a"}}))
	assert.Equal(t, "o", ruleIDFor(decision.Raw{Verb: decision.VerbAllowOverride, AllowOverride: &decision.AllowOverride{RuleID: "o"}}))
	assert.Equal(t, "", ruleIDFor(decision.Raw{Verb: decision.VerbAllow}))
}
