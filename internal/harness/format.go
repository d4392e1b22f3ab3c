package harness

import (
	"fmt"

	"github.com/cupcake-policy/cupcake/internal/decision"
	"github.com/cupcake-policy/cupcake/internal/event"
)

// Format renders a synthesized Raw decision into the harness-specific wire
// Response for the given event. It is the single place that ties the
// compatibility-matrix narrowing (Coerce*) to the per-harness wire shape
// (Format*): every branch below is an exhaustive, compile-time-checked
// application of one event kind's marker interface.
func Format(h event.Harness, k event.Kind, raw decision.Raw) (Response, error) {
	if raw.Verb == decision.VerbHalt {
		halt := HaltOutcome{RuleID: raw.Halt.RuleID, Reason: raw.Halt.Reason}
		switch h {
		case event.HarnessClaudeCode:
			return FormatClaudeHalt(halt), nil
		default:
			return haltResponse(halt), nil
		}
	}

	switch h {
	case event.HarnessClaudeCode:
		return formatClaude(k, raw)
	case event.HarnessCursor, event.HarnessOpenCode, event.HarnessFactory:
		// These harnesses reuse the Claude Code wire shape family; only the
		// parsers differ. A production build would give each its own
		// Format* set mirroring claude.go once each harness's native wire
		// format is pinned down.
		return formatClaude(k, raw)
	default:
		return Response{}, fmt.Errorf("unknown harness %q", h)
	}
}

func formatClaude(k event.Kind, raw decision.Raw) (Response, error) {
	switch k {
	case event.ClaudePreToolUse:
		return FormatClaudePreToolUse(CoercePreToolUse(raw)), nil
	case event.ClaudePostToolUse:
		return FormatClaudePostToolUse(CoercePostToolUse(raw)), nil
	case event.ClaudeStop, event.ClaudeSubagentStop:
		return FormatClaudeStopLike(CoerceStopLike(raw)), nil
	case event.ClaudeUserPromptSubmit:
		return FormatClaudeUserPromptSubmit(CoerceUserPromptSubmit(raw)), nil
	case event.ClaudeSessionStart, event.ClaudePreCompact:
		return FormatClaudeContextOnly(string(k), CoerceContextOnly(raw)), nil
	case event.ClaudeNotification, event.ClaudeSessionEnd:
		return FormatClaudeNotification(CoerceNotification(raw)), nil
	default:
		return Response{}, fmt.Errorf("unhandled event kind %q", k)
	}
}
