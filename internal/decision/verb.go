// Package decision implements the Decision Verb / Decision Set / Final Decision
// data model and the Synthesizer.
package decision

// Severity is advisory ordering information carried on halt/deny/block verbs.
// It is never dispositive to synthesis; ties among
// verbs of equal priority are always broken by insertion order.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Halt stops the agent entirely.
type Halt struct {
	RuleID   string   `json:"rule_id"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}

// Deny blocks a PreToolUse tool call with permission "deny".
type Deny struct {
	RuleID   string   `json:"rule_id"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}

// Block blocks a post-execution or prompt event with feedback returned to
// the agent.
type Block struct {
	RuleID   string   `json:"rule_id"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}

// Ask prompts the user; PreToolUse only.
type Ask struct {
	RuleID   string   `json:"rule_id"`
	Reason   string   `json:"reason"`
	Question string   `json:"question"`
	Severity Severity `json:"severity"`
}

// AllowOverride explicitly permits despite other verbs; PreToolUse only.
type AllowOverride struct {
	RuleID   string   `json:"rule_id"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}

// AddContext is a string to inject into the agent's context.
type AddContext struct {
	RuleID  string `json:"rule_id"`
	Content string `json:"content"`
}

// Set is the raw output of one WASM evaluation phase: six lists, one per
// verb, in the order the aggregation entrypoint's walk() produced them —
// the schema is fixed regardless of how Rego's walk() discovers the rules.
type Set struct {
	Halts          []Halt          `json:"halts"`
	Denials        []Deny          `json:"denials"`
	Blocks         []Block         `json:"blocks"`
	Asks           []Ask           `json:"asks"`
	AllowOverrides []AllowOverride `json:"allow_overrides"`
	AddContexts    []AddContext    `json:"add_context"`
}

// Empty reports whether no rule in this set produced any verb at all.
func (s Set) Empty() bool {
	return len(s.Halts) == 0 && len(s.Denials) == 0 && len(s.Blocks) == 0 &&
		len(s.Asks) == 0 && len(s.AllowOverrides) == 0 && len(s.AddContexts) == 0
}

// Merge combines two decision sets, preserving insertion order: s's entries
// come first, then other's. Used to combine project-phase decisions with
// add_context entries carried over from the global phase.
func (s Set) Merge(other Set) Set {
	return Set{
		Halts:          append(append([]Halt{}, s.Halts...), other.Halts...),
		Denials:        append(append([]Deny{}, s.Denials...), other.Denials...),
		Blocks:         append(append([]Block{}, s.Blocks...), other.Blocks...),
		Asks:           append(append([]Ask{}, s.Asks...), other.Asks...),
		AllowOverrides: append(append([]AllowOverride{}, s.AllowOverrides...), other.AllowOverrides...),
		AddContexts:    append(append([]AddContext{}, s.AddContexts...), other.AddContexts...),
	}
}

// OnlyAddContext returns a Set containing only this set's add_context
// entries, used when carrying global-phase context forward into the
// project phase even though the global phase itself did not halt, deny,
// or block.
func (s Set) OnlyAddContext() Set {
	return Set{AddContexts: append([]AddContext{}, s.AddContexts...)}
}
