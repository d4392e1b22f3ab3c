package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcake-policy/cupcake/internal/event"
	"github.com/cupcake-policy/cupcake/internal/policy"
)

func unit(name string, events []event.Kind, tools []string) *policy.Unit {
	u := &policy.Unit{
		Name:            name,
		RequiredEvents:  map[event.Kind]bool{},
		RequiredTools:   map[string]bool{},
		RequiredSignals: map[string]bool{},
	}
	for _, e := range events {
		u.RequiredEvents[e] = true
	}
	for _, t := range tools {
		u.RequiredTools[t] = true
	}
	return u
}

func TestBuild_RejectsMissingRequiredEvents(t *testing.T) {
	_, err := Build([]*policy.Unit{unit("bad", nil, nil)})
	require.Error(t, err)
}

func TestBuild_RejectsNamespaceCollision(t *testing.T) {
	units := []*policy.Unit{
		unit("dup", []event.Kind{event.ClaudePreToolUse}, nil),
		unit("dup", []event.Kind{event.ClaudePreToolUse}, nil),
	}
	_, err := Build(units)
	require.Error(t, err)
}

func TestWildcardContainment(t *testing.T) {
	wildcard := unit("wild", []event.Kind{event.ClaudePreToolUse}, nil)
	specific := unit("bash-only", []event.Kind{event.ClaudePreToolUse}, []string{"Bash"})

	m, err := Build([]*policy.Unit{wildcard, specific})
	require.NoError(t, err)

	env := &event.Envelope{Kind: event.ClaudePreToolUse, ToolName: "Write"}
	entry := m.Lookup(env)

	names := map[string]bool{}
	for _, u := range entry.Units {
		names[u.Name] = true
	}
	assert.True(t, names["wild"], "wildcard policy must be evaluated for every tool")
	assert.False(t, names["bash-only"], "Bash-specific policy must not run for Write")
}

func TestWildcardContainment_BashSpecificRunsForBash(t *testing.T) {
	wildcard := unit("wild", []event.Kind{event.ClaudePreToolUse}, nil)
	specific := unit("bash-only", []event.Kind{event.ClaudePreToolUse}, []string{"Bash"})

	m, err := Build([]*policy.Unit{wildcard, specific})
	require.NoError(t, err)

	env := &event.Envelope{Kind: event.ClaudePreToolUse, ToolName: "Bash"}
	entry := m.Lookup(env)

	names := map[string]bool{}
	for _, u := range entry.Units {
		names[u.Name] = true
	}
	assert.True(t, names["wild"])
	assert.True(t, names["bash-only"])
}

func TestRoutingDenseness_EmptyLookupNeverFails(t *testing.T) {
	m, err := Build(nil)
	require.NoError(t, err)

	env := &event.Envelope{Kind: event.ClaudeNotification}
	entry := m.Lookup(env)
	assert.NotNil(t, entry)
	assert.Empty(t, entry.Units)
}

func TestRequiredSignalsAggregatedPerKey(t *testing.T) {
	u := unit("sig", []event.Kind{event.ClaudePreToolUse}, []string{"Bash"})
	u.RequiredSignals["git_status"] = true

	m, err := Build([]*policy.Unit{u})
	require.NoError(t, err)

	entry := m.Lookup(&event.Envelope{Kind: event.ClaudePreToolUse, ToolName: "Bash"})
	assert.True(t, entry.RequiredSignals["git_status"])
}
