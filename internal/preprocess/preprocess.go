// Package preprocess implements the input-normalization stage that defeats
// adversarial whitespace and quoting bypasses before any policy sees an
// event.
//
// Every operation here is best-effort: preprocessing never fails the
// pipeline. A canonicalization or extraction failure simply leaves the
// corresponding enriched field unset and logs a diagnostic.
package preprocess

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/cupcake-policy/cupcake/internal/event"
)

// Options enables or disables each normalization independently. All default to true.
type Options struct {
	Whitespace      bool
	ScriptInspection bool
	SymlinkResolve  bool
}

// DefaultOptions returns every normalization enabled.
func DefaultOptions() Options {
	return Options{Whitespace: true, ScriptInspection: true, SymlinkResolve: true}
}

// commandPath returns the tool_input key holding the shell-command string
// for the given harness: "command" for Claude Code, Factory, and OpenCode,
// and "" for every other harness, Cursor included.
func commandPath(h event.Harness) string {
	switch h {
	case event.HarnessClaudeCode, event.HarnessFactory, event.HarnessOpenCode:
		return "command"
	default:
		return ""
	}
}

// Process runs every enabled normalization against a clone of env and
// returns the clone; the caller's original event is left untouched.
func Process(log zerolog.Logger, env *event.Envelope, opts Options) *event.Envelope {
	out := env.Clone()

	var toolInput map[string]interface{}
	if len(out.ToolInput) > 0 {
		if err := json.Unmarshal(out.ToolInput, &toolInput); err != nil {
			log.Warn().Err(err).Msg("preprocess: tool_input is not a JSON object, skipping field-level normalization")
			toolInput = nil
		}
	}

	if opts.Whitespace && toolInput != nil {
		normalizeWhitespace(log, &out.Preprocessing, toolInput)
	}

	if opts.ScriptInspection && toolInput != nil {
		inspectScript(log, &out.Preprocessing, toolInput)
	}

	if opts.SymlinkResolve && toolInput != nil {
		resolveSymlink(log, &out.Preprocessing, toolInput, out.CWD)
	}

	if toolInput != nil {
		if rewritten, err := json.Marshal(toolInput); err == nil {
			out.ToolInput = rewritten
		} else {
			log.Warn().Err(err).Msg("preprocess: failed to re-marshal normalized tool_input")
		}
	}

	return out
}

func stringField(m map[string]interface{}, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
