// Package policy defines the Policy Unit data model: a compiled
// Rego source file plus the routing metadata the Router indexes it by.
package policy

import "github.com/cupcake-policy/cupcake/internal/event"

// Namespace identifies which of the two evaluation phases a policy belongs
// to. Global policies cannot be overridden by
// project policies sharing a rule identifier.
type Namespace string

const (
	NamespaceGlobal  Namespace = "cupcake.global.policies"
	NamespaceProject Namespace = "cupcake.policies"
)

// Unit is a named Rego source file plus its parsed routing metadata.
type Unit struct {
	Name      string
	Namespace Namespace
	Source    string // Rego source, used by internal/validator at authoring time

	// RequiredEvents is the set of event kinds this policy routes under. A
	// policy with an empty RequiredEvents is rejected at load time — Unit
	// construction should be validated with Validate before being handed
	// to the Router.
	RequiredEvents map[event.Kind]bool

	// RequiredTools is the set of tool names this policy routes under.
	// Empty means wildcard: it matches every tool for its RequiredEvents.
	RequiredTools map[string]bool

	// RequiredSignals is the set of signal names the Signal Gatherer must
	// resolve before this policy can be evaluated.
	RequiredSignals map[string]bool
}

// Wildcard reports whether this unit has no tool restriction.
func (u *Unit) Wildcard() bool {
	return len(u.RequiredTools) == 0
}

// Validate enforces the load-time invariant that every policy declares at
// least one required event.
func (u *Unit) Validate() error {
	if len(u.RequiredEvents) == 0 {
		return &InvalidUnitError{Name: u.Name, Reason: "required_events must be non-empty"}
	}
	return nil
}

// InvalidUnitError reports a Policy Unit that failed load-time validation.
type InvalidUnitError struct {
	Name   string
	Reason string
}

func (e *InvalidUnitError) Error() string {
	return "policy " + e.Name + ": " + e.Reason
}
