package harness

import (
	"encoding/json"
	"fmt"

	"github.com/cupcake-policy/cupcake/internal/event"
)

// claudeWireEvent is the raw JSON shape Claude Code sends on stdin for every
// hook event. Fields not relevant to a given hook_event_name are simply
// absent/zero.
type claudeWireEvent struct {
	HookEventName  string          `json:"hook_event_name"`
	SessionID      string          `json:"session_id"`
	TranscriptPath string          `json:"transcript_path"`
	CWD            string          `json:"cwd"`
	ToolName       string          `json:"tool_name"`
	ToolInput      json.RawMessage `json:"tool_input"`
	Prompt         string          `json:"prompt,omitempty"`
	Message        string          `json:"message,omitempty"`
}

// ParseClaudeCode decodes a raw Claude Code hook payload into the common
// Envelope.
func ParseClaudeCode(raw []byte) (*event.Envelope, error) {
	var w claudeWireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parsing claude code event: %w", err)
	}
	if w.HookEventName == "" {
		return nil, fmt.Errorf("parsing claude code event: missing hook_event_name")
	}
	return &event.Envelope{
		Harness:        event.HarnessClaudeCode,
		Kind:           event.Kind(w.HookEventName),
		SessionID:      w.SessionID,
		TranscriptPath: w.TranscriptPath,
		CWD:            w.CWD,
		ToolName:       w.ToolName,
		ToolInput:      w.ToolInput,
	}, nil
}

// FormatClaudePreToolUse renders a PreToolUseOutcome into the Claude Code
// wire response.
func FormatClaudePreToolUse(o PreToolUseOutcome) Response {
	switch v := o.(type) {
	case DenyOutcome:
		return Response{
			Continue:   boolPtr(false),
			StopReason: v.Reason,
			HookSpecificOutput: preToolUseHookOutput{
				HookEventName:            "PreToolUse",
				PermissionDecision:       "deny",
				PermissionDecisionReason: v.Reason,
			},
		}
	case AskOutcome:
		return Response{
			Continue: boolPtr(true),
			HookSpecificOutput: preToolUseHookOutput{
				HookEventName:            "PreToolUse",
				PermissionDecision:       "ask",
				PermissionDecisionReason: v.Question,
			},
		}
	case AllowOverrideOutcome:
		return Response{
			Continue: boolPtr(true),
			HookSpecificOutput: preToolUseHookOutput{
				HookEventName:            "PreToolUse",
				PermissionDecision:       "allow",
				PermissionDecisionReason: v.Reason,
			},
		}
	case AllowOutcome:
		return Response{
			Continue: boolPtr(true),
			HookSpecificOutput: preToolUseHookOutput{
				HookEventName:      "PreToolUse",
				PermissionDecision: "allow",
			},
		}
	default:
		return Response{Continue: boolPtr(true)}
	}
}

// FormatClaudePostToolUse renders a PostToolUseOutcome into the Claude Code
// wire response.
func FormatClaudePostToolUse(o PostToolUseOutcome) Response {
	switch v := o.(type) {
	case BlockOutcome:
		return Response{Decision: "block", Reason: v.Reason}
	case AllowOverrideOutcome:
		return Response{Continue: boolPtr(true), Reason: v.Reason}
	case AllowOutcome:
		resp := Response{Continue: boolPtr(true)}
		if len(v.Context) > 0 {
			resp.HookSpecificOutput = contextHookOutput{
				HookEventName:     "PostToolUse",
				AdditionalContext: joinContext(v.Context),
			}
		}
		return resp
	default:
		return Response{Continue: boolPtr(true)}
	}
}

// FormatClaudeStopLike renders a StopLikeOutcome (Stop or SubagentStop) into
// the Claude Code wire response.
func FormatClaudeStopLike(o StopLikeOutcome) Response {
	if v, ok := o.(BlockOutcome); ok {
		return Response{Decision: "block", Reason: v.Reason}
	}
	return Response{Continue: boolPtr(true)}
}

// FormatClaudeUserPromptSubmit renders a UserPromptSubmitOutcome into the
// Claude Code wire response.
func FormatClaudeUserPromptSubmit(o UserPromptSubmitOutcome) Response {
	switch v := o.(type) {
	case BlockOutcome:
		return Response{Decision: "block", Reason: v.Reason}
	case AllowOutcome:
		resp := Response{Continue: boolPtr(true)}
		if len(v.Context) > 0 {
			resp.HookSpecificOutput = contextHookOutput{
				HookEventName:     "UserPromptSubmit",
				AdditionalContext: joinContext(v.Context),
			}
		}
		return resp
	default:
		return Response{Continue: boolPtr(true)}
	}
}

// FormatClaudeContextOnly renders a ContextOnlyOutcome (SessionStart or
// PreCompact) into the Claude Code wire response. eventName disambiguates
// hookSpecificOutput.hookEventName since both kinds share this outcome type.
func FormatClaudeContextOnly(eventName string, o ContextOnlyOutcome) Response {
	v, ok := o.(AllowOutcome)
	if !ok || len(v.Context) == 0 {
		return Response{Continue: boolPtr(true)}
	}
	return Response{
		Continue: boolPtr(true),
		HookSpecificOutput: contextHookOutput{
			HookEventName:     eventName,
			AdditionalContext: joinContext(v.Context),
		},
	}
}

// FormatClaudeNotification renders a NotificationOutcome into the Claude
// Code wire response. Notification supports neither block nor context, so
// the response is always a bare continue.
func FormatClaudeNotification(_ NotificationOutcome) Response {
	return Response{Continue: boolPtr(true)}
}

// FormatClaudeHalt renders a universal Halt outcome.
func FormatClaudeHalt(h HaltOutcome) Response {
	return haltResponse(h)
}
