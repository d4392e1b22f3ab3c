package harness

import (
	"github.com/cupcake-policy/cupcake/internal/decision"
	"github.com/cupcake-policy/cupcake/internal/event"
)

// CapabilitiesFor returns the Decision-Event Compatibility Matrix row for a harness-qualified event kind, used by the engine to drive
// decision.Synthesize.
func CapabilitiesFor(h event.Harness, k event.Kind) decision.Capabilities {
	switch h {
	case event.HarnessClaudeCode:
		return claudeCapabilities(k)
	case event.HarnessCursor:
		return cursorCapabilities(k)
	case event.HarnessOpenCode:
		return openCodeCapabilities(k)
	case event.HarnessFactory:
		return factoryCapabilities(k)
	default:
		return decision.Capabilities{}
	}
}

func claudeCapabilities(k event.Kind) decision.Capabilities {
	switch k {
	case event.ClaudePreToolUse:
		return decision.Capabilities{Deny: true, Ask: true, AllowOverride: true}
	case event.ClaudePostToolUse:
		return decision.Capabilities{Block: true, AllowOverride: true, Context: true}
	case event.ClaudeStop, event.ClaudeSubagentStop:
		return decision.Capabilities{Block: true}
	case event.ClaudeUserPromptSubmit:
		return decision.Capabilities{Block: true, Context: true}
	case event.ClaudeSessionStart, event.ClaudePreCompact:
		return decision.Capabilities{Context: true}
	case event.ClaudeNotification, event.ClaudeSessionEnd:
		return decision.Capabilities{}
	default:
		return decision.Capabilities{}
	}
}

// Coerce turns a harness-agnostic decision.Raw into the strongly-typed
// Outcome for a given event kind, applying the matrix-based narrowing the
// synthesizer already enforced. Coerce never constructs an outcome the event
// kind's marker interface couldn't accept — the switch below is exhaustive
// over decision.VerbKind and each branch is only reached for verbs
// decision.Synthesize would have produced given the same Capabilities.

func CoercePreToolUse(raw decision.Raw) PreToolUseOutcome {
	switch raw.Verb {
	case decision.VerbDeny:
		return DenyOutcome{RuleID: raw.Deny.RuleID, Reason: raw.Deny.Reason}
	case decision.VerbAsk:
		return AskOutcome{RuleID: raw.Ask.RuleID, Reason: raw.Ask.Reason, Question: raw.Ask.Question}
	case decision.VerbAllowOverride:
		return AllowOverrideOutcome{RuleID: raw.AllowOverride.RuleID, Reason: raw.AllowOverride.Reason}
	default:
		return AllowOutcome{Context: raw.Context}
	}
}

func CoercePostToolUse(raw decision.Raw) PostToolUseOutcome {
	switch raw.Verb {
	case decision.VerbBlock:
		return BlockOutcome{RuleID: raw.Block.RuleID, Reason: raw.Block.Reason}
	case decision.VerbAllowOverride:
		return AllowOverrideOutcome{RuleID: raw.AllowOverride.RuleID, Reason: raw.AllowOverride.Reason}
	default:
		return AllowOutcome{Context: raw.Context}
	}
}

func CoerceStopLike(raw decision.Raw) StopLikeOutcome {
	if raw.Verb == decision.VerbBlock {
		return BlockOutcome{RuleID: raw.Block.RuleID, Reason: raw.Block.Reason}
	}
	return AllowOutcome{Context: raw.Context}
}

func CoerceUserPromptSubmit(raw decision.Raw) UserPromptSubmitOutcome {
	if raw.Verb == decision.VerbBlock {
		return BlockOutcome{RuleID: raw.Block.RuleID, Reason: raw.Block.Reason}
	}
	return AllowOutcome{Context: raw.Context}
}

func CoerceContextOnly(raw decision.Raw) ContextOnlyOutcome {
	return AllowOutcome{Context: raw.Context}
}

func CoerceNotification(raw decision.Raw) NotificationOutcome {
	return AllowOutcome{Context: raw.Context}
}
