// Package router implements O(1) event-to-policy lookup: a routing map
// built once at engine construction and read-only thereafter.
package router

import (
	"fmt"

	"github.com/cupcake-policy/cupcake/internal/event"
	"github.com/cupcake-policy/cupcake/internal/policy"
)

// Entry is what a routing-key lookup returns: the ordered list of policy
// units to evaluate, plus the set of signal names any of them need.
type Entry struct {
	Units         []*policy.Unit
	RequiredSignals map[string]bool
}

// Map is the compiled, read-only routing table. Construct one with Build;
// concurrent Lookup calls are always safe since nothing mutates a Map after
// construction.
type Map struct {
	byKey map[string]*Entry
}

// namespaceCollisionError is returned by Build when two policies declare the
// same package name.
type namespaceCollisionError struct {
	name string
}

func (e *namespaceCollisionError) Error() string {
	return fmt.Sprintf("router: duplicate policy package name %q", e.name)
}

// Build constructs a routing Map from a flat list of Policy Units. For each
// unit it inserts under every `<Event>:<Tool>` key implied by
// RequiredEvents × RequiredTools; wildcard units (empty RequiredTools)
// register only under the bare `<Event>` key. Lookup is responsible for
// merging a wildcard's bare-event entry into any tool-specific lookup, so
// Build never needs to know the full set of tools a wildcard might match.
func Build(units []*policy.Unit) (*Map, error) {
	seen := make(map[string]bool, len(units))
	for _, u := range units {
		if seen[u.Name] {
			return nil, &namespaceCollisionError{name: u.Name}
		}
		seen[u.Name] = true
		if err := u.Validate(); err != nil {
			return nil, err
		}
	}

	byKey := make(map[string]*Entry)
	get := func(key string) *Entry {
		e, ok := byKey[key]
		if !ok {
			e = &Entry{RequiredSignals: map[string]bool{}}
			byKey[key] = e
		}
		return e
	}

	for _, u := range units {
		for k := range u.RequiredEvents {
			if u.Wildcard() {
				insert(get(string(k)), u)
				continue
			}
			for tool := range u.RequiredTools {
				insert(get(string(k)+":"+tool), u)
			}
		}
	}

	return &Map{byKey: byKey}, nil
}

func insert(e *Entry, u *policy.Unit) {
	e.Units = append(e.Units, u)
	for s := range u.RequiredSignals {
		e.RequiredSignals[s] = true
	}
}

// Lookup returns the routing entry for an event, deriving its routing key
// internally. A key with no registered units returns an empty, non-nil
// Entry: lookup is never a failure.
//
// When the event carries a tool name, the tool-specific entry (if any) is
// merged with the bare-event entry, so a wildcard policy (registered only
// under the bare `<Event>` key) still matches every tool, not just the
// tools some other, specific policy happens to also claim.
func (m *Map) Lookup(env *event.Envelope) *Entry {
	specific, hasSpecific := m.byKey[env.RoutingKey()]
	if !env.HasTool() {
		if hasSpecific {
			return specific
		}
		return &Entry{RequiredSignals: map[string]bool{}}
	}

	bare, hasBare := m.byKey[string(env.Kind)]
	switch {
	case hasSpecific && hasBare:
		return merge(specific, bare)
	case hasSpecific:
		return specific
	case hasBare:
		return bare
	default:
		return &Entry{RequiredSignals: map[string]bool{}}
	}
}

// merge combines two entries' units and required signals without mutating
// either input.
func merge(a, b *Entry) *Entry {
	out := &Entry{
		Units:           make([]*policy.Unit, 0, len(a.Units)+len(b.Units)),
		RequiredSignals: map[string]bool{},
	}
	out.Units = append(out.Units, a.Units...)
	out.Units = append(out.Units, b.Units...)
	for s := range a.RequiredSignals {
		out.RequiredSignals[s] = true
	}
	for s := range b.RequiredSignals {
		out.RequiredSignals[s] = true
	}
	return out
}
