package decision

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestSynthesize_PriorityInvariant(t *testing.T) {
	full := Capabilities{Deny: true, Block: true, Ask: true, AllowOverride: true, Context: true}

	set := Set{
		Halts:          []Halt{{RuleID: "h1", Reason: "halt now"}},
		Denials:        []Deny{{RuleID: "d1", Reason: "deny"}},
		Blocks:         []Block{{RuleID: "b1", Reason: "block"}},
		Asks:           []Ask{{RuleID: "a1", Reason: "ask", Question: "q?"}},
		AllowOverrides: []AllowOverride{{RuleID: "o1", Reason: "override"}},
	}

	raw := Synthesize(discardLogger(), set, full)
	require.Equal(t, VerbHalt, raw.Verb, "halt must win over every other verb")
	assert.Equal(t, "h1", raw.Halt.RuleID)

	// Remove halts: deny/block pool wins next.
	set.Halts = nil
	raw = Synthesize(discardLogger(), set, full)
	require.Equal(t, VerbDeny, raw.Verb)
	assert.Equal(t, "d1", raw.Deny.RuleID)

	// Remove denials: blocks win.
	set.Denials = nil
	raw = Synthesize(discardLogger(), set, full)
	require.Equal(t, VerbDeny, raw.Verb, "event capabilities prefer Deny verb name when Deny is supported")
	assert.Equal(t, "b1", raw.Deny.RuleID)

	// Remove denials+blocks: ask wins.
	set.Blocks = nil
	raw = Synthesize(discardLogger(), set, full)
	require.Equal(t, VerbAsk, raw.Verb)

	// Remove asks: allow_override wins.
	set.Asks = nil
	raw = Synthesize(discardLogger(), set, full)
	require.Equal(t, VerbAllowOverride, raw.Verb)

	// Remove everything: allow.
	set.AllowOverrides = nil
	raw = Synthesize(discardLogger(), set, full)
	require.Equal(t, VerbAllow, raw.Verb)
}

func TestSynthesize_DenyBecomesBlockWhenEventLacksDeny(t *testing.T) {
	caps := Capabilities{Block: true, Context: true}
	set := Set{Denials: []Deny{{RuleID: "d1", Reason: "nope"}}}

	raw := Synthesize(discardLogger(), set, caps)
	require.Equal(t, VerbBlock, raw.Verb)
	assert.Equal(t, "d1", raw.Block.RuleID)
}

func TestSynthesize_AskDowngradesToAllowWithContext(t *testing.T) {
	caps := Capabilities{Context: true}
	set := Set{Asks: []Ask{{RuleID: "a1", Reason: "why not"}}}

	raw := Synthesize(discardLogger(), set, caps)
	require.Equal(t, VerbAllow, raw.Verb)
	require.Len(t, raw.Context, 1)
	assert.Equal(t, "why not", raw.Context[0])
}

func TestSynthesize_AskDroppedWhenEventHasNoContext(t *testing.T) {
	caps := Capabilities{}
	set := Set{Asks: []Ask{{RuleID: "a1", Reason: "why not"}}}

	raw := Synthesize(discardLogger(), set, caps)
	require.Equal(t, VerbAllow, raw.Verb)
	assert.Empty(t, raw.Context)
}

func TestSynthesize_AddContextAccumulatesInOrder(t *testing.T) {
	caps := Capabilities{Context: true}
	set := Set{
		AddContexts: []AddContext{
			{RuleID: "c1", Content: "first"},
			{RuleID: "c2", Content: "second"},
		},
	}
	raw := Synthesize(discardLogger(), set, caps)
	require.Equal(t, VerbAllow, raw.Verb)
	require.Equal(t, []string{"first", "second"}, raw.Context)
}

func TestSet_Merge_PreservesInsertionOrder(t *testing.T) {
	a := Set{AddContexts: []AddContext{{Content: "global"}}}
	b := Set{AddContexts: []AddContext{{Content: "project"}}}
	merged := a.Merge(b)
	require.Equal(t, []AddContext{{Content: "global"}, {Content: "project"}}, merged.AddContexts)
}

func TestSynthesize_Deterministic(t *testing.T) {
	caps := Capabilities{Deny: true, Context: true}
	set := Set{Denials: []Deny{{RuleID: "d1", Reason: "r"}}}

	first := Synthesize(discardLogger(), set, caps)
	second := Synthesize(discardLogger(), set, caps)
	assert.Equal(t, first, second, "identical decision sets must yield identical final decisions")
}
