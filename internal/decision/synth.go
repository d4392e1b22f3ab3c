package decision

import "github.com/rs/zerolog"

// VerbKind names which priority tier the synthesizer landed on.
type VerbKind string

const (
	VerbHalt          VerbKind = "halt"
	VerbDeny          VerbKind = "deny"
	VerbBlock         VerbKind = "block"
	VerbAsk           VerbKind = "ask"
	VerbAllowOverride VerbKind = "allow_override"
	VerbAllow         VerbKind = "allow"
)

// Capabilities describes which verbs an event kind supports, per the
// Decision-Event Compatibility Matrix. The synthesizer uses it to
// decide whether a candidate verb survives as-is or is downgraded.
type Capabilities struct {
	Deny          bool // PreToolUse only
	Block         bool
	Ask           bool // PreToolUse only
	AllowOverride bool
	Context       bool
}

// Raw is the harness-agnostic result of synthesis: exactly one verb tier won,
// carrying that tier's fields plus any accumulated context strings. The
// harness package turns a Raw into the strongly-typed, event-specific Outcome
// that is actually impossible to misuse (see internal/harness).
type Raw struct {
	Verb          VerbKind
	Halt          *Halt
	Deny          *Deny
	Block         *Block
	Ask           *Ask
	AllowOverride *AllowOverride
	Context       []string
}

// Synthesize reduces a Decision Set to a Raw final decision under a strict
// priority order:
//
//  1. halts (non-empty) -> Halt, highest-severity halt's reason is not
//     dispositive; ties are insertion order.
//  2. denials/blocks (first by insertion order, denials checked first) ->
//     Deny if the event supports it, else Block.
//  3. asks (event supports ask) -> Ask.
//  4. allow_overrides -> AllowOverride.
//  5. otherwise -> Allow with accumulated add_context.
//
// Any verb produced for an event that cannot express it is downgraded: its
// reason is folded into context if the event supports context, otherwise
// dropped, and a diagnostic is logged.
func Synthesize(log zerolog.Logger, set Set, caps Capabilities) Raw {
	var context []string
	downgrade := func(verb, ruleID, reason string) {
		log.Warn().
			Str("downgraded_verb", verb).
			Str("rule_id", ruleID).
			Msg("verb not supported by this event kind, downgrading")
		if caps.Context {
			context = append(context, reason)
		}
	}

	if len(set.Halts) > 0 {
		h := firstHalt(set.Halts)
		return Raw{Verb: VerbHalt, Halt: &h}
	}

	if len(set.Denials) > 0 || len(set.Blocks) > 0 {
		ruleID, reason, severity := firstDenialOrBlock(set)
		switch {
		case caps.Deny:
			return Raw{Verb: VerbDeny, Deny: &Deny{RuleID: ruleID, Reason: reason, Severity: severity}}
		case caps.Block:
			return Raw{Verb: VerbBlock, Block: &Block{RuleID: ruleID, Reason: reason, Severity: severity}}
		default:
			downgrade("deny_or_block", ruleID, reason)
		}
	}

	if len(set.Asks) > 0 {
		a := set.Asks[0]
		if caps.Ask {
			return Raw{Verb: VerbAsk, Ask: &a}
		}
		downgrade("ask", a.RuleID, a.Reason)
	}

	if len(set.AllowOverrides) > 0 {
		ao := set.AllowOverrides[0]
		if caps.AllowOverride {
			return Raw{Verb: VerbAllowOverride, AllowOverride: &ao}
		}
		downgrade("allow_override", ao.RuleID, ao.Reason)
	}

	for _, ac := range set.AddContexts {
		if caps.Context {
			context = append(context, ac.Content)
		}
	}

	return Raw{Verb: VerbAllow, Context: context}
}

// firstHalt picks the first halt by insertion order; severity is advisory
// only and never used to break the tie.
func firstHalt(halts []Halt) Halt {
	return halts[0]
}

// firstDenialOrBlock resolves the combined denial/block pool: "denials or
// blocks" is one pool reduced to "the first by insertion order", but the
// Decision Set carries them as two separate lists (one per verb name, by
// its fixed six-field schema) rather than one interleaved stream, so this
// implementation checks denials before blocks. This is a documented
// resolution of an implementation-level ambiguity, not a deviation: a
// policy author who wants mixed deny/block ordering control should use
// only one of the two verbs for a given routing key (see DESIGN.md).
func firstDenialOrBlock(set Set) (ruleID, reason string, severity Severity) {
	if len(set.Denials) > 0 {
		d := set.Denials[0]
		return d.RuleID, d.Reason, d.Severity
	}
	b := set.Blocks[0]
	return b.RuleID, b.Reason, b.Severity
}
