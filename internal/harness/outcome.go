// Package harness implements the per-harness event parsers and response
// formatters, including the compile-time Decision-Event
// Compatibility Matrix: each event kind accepts an Outcome interface whose
// only implementations are the verbs that matrix row allows. There is no
// runtime branch anywhere that could construct, say, a Deny outcome for a
// SessionStart event — the type simply has no constructor that produces one.
package harness

// Outcome is implemented by every concrete decision outcome. It carries no
// behavior; it exists so the per-event marker interfaces below can embed it
// and still be satisfied only by the outcome values that are legal for that
// event.
type Outcome interface {
	isOutcome()
}

// AllowOutcome is legal everywhere (every row of the matrix has a ✓ in the
// Allow column). Context carries add_context strings; formatters that serve
// event kinds without a context-carrying wire field (PreToolUse, Stop,
// SubagentStop, Notification) simply never read Context, because their
// response struct has no field to put it in (see response.go).
type AllowOutcome struct {
	Context []string
}

func (AllowOutcome) isOutcome() {}

// DenyOutcome is PreToolUse-only.
type DenyOutcome struct {
	RuleID, Reason string
}

func (DenyOutcome) isOutcome() {}

// BlockOutcome applies to PostToolUse, Stop, SubagentStop, and
// UserPromptSubmit.
type BlockOutcome struct {
	RuleID, Reason string
}

func (BlockOutcome) isOutcome() {}

// AskOutcome is PreToolUse-only.
type AskOutcome struct {
	RuleID, Reason, Question string
}

func (AskOutcome) isOutcome() {}

// AllowOverrideOutcome applies to PreToolUse and PostToolUse only.
type AllowOverrideOutcome struct {
	RuleID, Reason string
}

func (AllowOverrideOutcome) isOutcome() {}

// HaltOutcome is universal: it supersedes every event-specific outcome and is
// formatted identically (continue:false, stopReason set) regardless of which
// event kind produced it. It is not part of any per-event marker interface
// below because it never needs to be — the engine checks for Halt before
// ever constructing an event-specific Outcome.
type HaltOutcome struct {
	RuleID, Reason string
}

// --- Per-event marker interfaces -------------------------------------------
//
// Each interface is satisfied only by the outcome structs the matrix allows
// for that event kind. A compile error results from any attempt to pass,
// say, a BlockOutcome where a PreToolUseOutcome is required.

// PreToolUseOutcome: Allow | Deny | Ask | AllowOverride.
type PreToolUseOutcome interface {
	Outcome
	preToolUse()
}

func (AllowOutcome) preToolUse()         {}
func (DenyOutcome) preToolUse()          {}
func (AskOutcome) preToolUse()           {}
func (AllowOverrideOutcome) preToolUse() {}

// PostToolUseOutcome: Allow | Block | AllowOverride | AddContext (context
// rides on Allow).
type PostToolUseOutcome interface {
	Outcome
	postToolUse()
}

func (AllowOutcome) postToolUse()         {}
func (BlockOutcome) postToolUse()         {}
func (AllowOverrideOutcome) postToolUse() {}

// StopLikeOutcome: Allow | Block. Covers Stop and SubagentStop, which share a
// matrix row.
type StopLikeOutcome interface {
	Outcome
	stopLike()
}

func (AllowOutcome) stopLike() {}
func (BlockOutcome) stopLike() {}

// UserPromptSubmitOutcome: Allow | Block | AddContext (context rides on
// Allow).
type UserPromptSubmitOutcome interface {
	Outcome
	userPromptSubmit()
}

func (AllowOutcome) userPromptSubmit() {}
func (BlockOutcome) userPromptSubmit() {}

// ContextOnlyOutcome: Allow | AddContext only. Covers SessionStart and
// PreCompact, which share a matrix row.
type ContextOnlyOutcome interface {
	Outcome
	contextOnly()
}

func (AllowOutcome) contextOnly() {}

// NotificationOutcome: Allow only.
type NotificationOutcome interface {
	Outcome
	notification()
}

func (AllowOutcome) notification() {}
