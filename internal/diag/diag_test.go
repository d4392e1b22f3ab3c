package diag

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModules(t *testing.T) {
	set, err := ParseModules("eval, routing")
	require.NoError(t, err)
	assert.True(t, set[ModuleEval])
	assert.True(t, set[ModuleRouting])
	assert.False(t, set[ModuleWasm])

	_, err = ParseModules("bogus")
	assert.Error(t, err)

	empty, err := ParseModules("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestForModuleGating(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Level: zerolog.DebugLevel, Writer: &buf})

	modules := map[Module]bool{ModuleEval: true}
	evalLog := ForModule(base, modules, ModuleEval)
	evalLog.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")

	buf.Reset()
	wasmLog := ForModule(base, modules, ModuleWasm)
	wasmLog.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestSessionRegistryTouch(t *testing.T) {
	r := NewSessionRegistry()
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Duration(0), r.Touch("s1", t0))
	assert.Equal(t, 5*time.Minute, r.Touch("s1", t0.Add(5*time.Minute)))

	r.Forget("s1")
	assert.Equal(t, time.Duration(0), r.Touch("s1", t0.Add(time.Hour)))
}

func TestActivitySinkRecord(t *testing.T) {
	dir := t.TempDir()
	sink := NewActivitySink(dir)

	ev := ActivityEvent{
		Timestamp:     time.Now(),
		SessionID:     "sess-1",
		CorrelationID: "corr-1",
		RoutingKey:    "PreToolUse:Bash",
		PoliciesCount: 2,
		FinalVerb:     "allow",
	}
	require.NoError(t, sink.Record(ev))
	require.NoError(t, sink.Record(ev))

	data, err := os.ReadFile(filepath.Join(dir, ".cupcake", "trace", "sess-1.jsonl"))
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 2)

	var decoded ActivityEvent
	require.NoError(t, json.Unmarshal(lines[0], &decoded))
	assert.Equal(t, "PreToolUse:Bash", decoded.RoutingKey)
}
