package harness

import "strings"

// Response is the wire-format record returned to the harness.
// Field names are camelCase on the wire even though incoming events use
// snake_case; only this struct, marshaled once, is ever written to stdout —
// every other write path in the process goes to stderr.
type Response struct {
	Continue           *bool       `json:"continue,omitempty"`
	StopReason         string      `json:"stopReason,omitempty"`
	Decision           string      `json:"decision,omitempty"`
	Reason             string      `json:"reason,omitempty"`
	HookSpecificOutput interface{} `json:"hookSpecificOutput,omitempty"`
	SuppressOutput     bool        `json:"suppressOutput,omitempty"`
}

// preToolUseHookOutput is the hookSpecificOutput shape for PreToolUse: it has
// no additionalContext field at all, because PreToolUse does not support
// context injection — the type simply lacks the field, so there is nothing
// for a formatter to misuse.
type preToolUseHookOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
}

// contextHookOutput is the hookSpecificOutput shape for every event kind that
// supports add_context (PostToolUse, UserPromptSubmit, SessionStart,
// PreCompact). hookEventName is set per call site since the same struct
// shape is reused across those four kinds.
type contextHookOutput struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext,omitempty"`
}

func joinContext(parts []string) string {
	return strings.Join(parts, "\n")
}

func boolPtr(b bool) *bool { return &b }

// haltResponse is the universal wire shape for a Halt outcome, independent of
// event kind.
func haltResponse(h HaltOutcome) Response {
	return Response{
		Continue:   boolPtr(false),
		StopReason: h.Reason,
	}
}
