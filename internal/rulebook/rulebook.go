// Package rulebook parses the on-disk YAML configuration that declares
// signals, actions, and builtin configuration, and merges a global
// (host-wide) instance with a project (repository-scoped) one.
package rulebook

import (
	"time"
)

// SignalDef declares one named signal. Exactly one of Static or Command is
// meaningful per the signal's Kind, enforced by Validate rather than by a
// tagged union, to keep the YAML shape flat and hand-authorable. Static is
// a pointer so a configured zero value (`static: ""`) is distinguishable
// from the field being absent altogether; an explicit `static: null`
// decodes to nil, the same as an absent field.
type SignalDef struct {
	Command string        `yaml:"command,omitempty"`
	Args    []string      `yaml:"args,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
	Static  *interface{}  `yaml:"static,omitempty"`
}

// IsDynamic reports whether this signal spawns an external command rather
// than returning a literal.
func (d SignalDef) IsDynamic() bool {
	return d.Command != ""
}

// ActionCommand is one fire-and-forget command run after synthesis.
type ActionCommand struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
}

// Actions groups action commands by the trigger that fires them.
type Actions struct {
	OnAnyDenial []ActionCommand            `yaml:"on_any_denial,omitempty"`
	ByRuleID    map[string][]ActionCommand `yaml:"by_rule_id,omitempty"`
	ByEvent     map[string][]ActionCommand `yaml:"by_event,omitempty"`
}

// BuiltinConfig is a per-builtin configuration record; its shape varies by
// builtin name, so it is kept as a generic map rather than typed per
// builtin, and the consuming builtin implementation interprets its keys.
type BuiltinConfig map[string]interface{}

// Rulebook is one parsed YAML rulebook (global or project).
type Rulebook struct {
	Signals  map[string]SignalDef     `yaml:"signals,omitempty"`
	Actions  Actions                  `yaml:"actions,omitempty"`
	Builtins map[string]BuiltinConfig `yaml:"builtins,omitempty"`
}

// Empty returns a Rulebook with no signals, actions, or builtins — the
// identity value for Merge.
func Empty() *Rulebook {
	return &Rulebook{
		Signals:  map[string]SignalDef{},
		Actions:  Actions{ByRuleID: map[string][]ActionCommand{}, ByEvent: map[string][]ActionCommand{}},
		Builtins: map[string]BuiltinConfig{},
	}
}
