// Package event defines the harness-agnostic event envelope that flows through
// the Cupcake pipeline, plus the per-harness event kind vocabularies.
//
// An Event is immutable once constructed: the engine clones the raw JSON payload
// before preprocessing ever touches it, so a policy that inspects the original
// input alongside the enriched one always sees the as-submitted bytes.
package event

import "encoding/json"

// Harness identifies the AI coding agent that emitted an event.
type Harness string

const (
	HarnessClaudeCode Harness = "claude-code"
	HarnessCursor      Harness = "cursor"
	HarnessOpenCode    Harness = "opencode"
	HarnessFactory     Harness = "factory"
)

// Kind is a harness-specific lifecycle point name, e.g. "PreToolUse" for Claude
// Code or "beforeShellExecution" for Cursor. Kinds are opaque strings at this
// layer; the harness packages attach meaning to them.
type Kind string

// Envelope is the common portion of every event, regardless of harness or kind.
// Harness-specific payload fields live alongside it in the concrete per-harness
// event structs (see internal/harness).
type Envelope struct {
	Harness        Harness         `json:"-"`
	Kind           Kind            `json:"-"`
	SessionID      string          `json:"session_id"`
	TranscriptPath string          `json:"transcript_path"`
	CWD            string          `json:"cwd"`
	ToolName       string          `json:"tool_name,omitempty"`
	ToolInput      json.RawMessage `json:"tool_input,omitempty"`

	// Preprocessing is populated by internal/preprocess and is never present on
	// the event as received from the harness.
	Preprocessing Preprocessing `json:"-"`
}

// Preprocessing holds the fields the Preprocessor adds or derives. Every field
// is optional: preprocessing never fails the pipeline, it just leaves fields
// unset.
type Preprocessing struct {
	OriginalCommand  string `json:"original_command,omitempty"`
	InspectedScript  string `json:"inspected_script,omitempty"`
	ResolvedFilePath string `json:"resolved_file_path,omitempty"`
	OriginalFilePath string `json:"original_file_path,omitempty"`
	IsSymlink        bool   `json:"is_symlink,omitempty"`
}

// HasTool reports whether this event carries a tool name, i.e. it is one of the
// tool-invocation kinds (PreToolUse/PostToolUse in Claude Code terms).
func (e *Envelope) HasTool() bool {
	return e.ToolName != ""
}

// Clone returns a deep-enough copy of the envelope for preprocessing to mutate
// safely. ToolInput is a RawMessage (a byte slice); it is copied so in-place
// field rewrites during preprocessing never alias the original request bytes.
func (e *Envelope) Clone() *Envelope {
	clone := *e
	if e.ToolInput != nil {
		clone.ToolInput = append(json.RawMessage(nil), e.ToolInput...)
	}
	return &clone
}

// RoutingKey derives the `<Kind>` or `<Kind>:<ToolName>` string the Router
// indexes policies by.
func (e *Envelope) RoutingKey() string {
	if e.ToolName == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ":" + e.ToolName
}
