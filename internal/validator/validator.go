// Package validator performs authoring-time checks over policy source: it
// locates every decision-verb rule head in a Rego file and confirms the
// verb is legal for every event kind the policy is routed under, per the
// Decision-Event Compatibility Matrix — before the policy is ever compiled
// into a WASM bundle and hit on the evaluation hot path.
package validator

import (
	"fmt"

	"github.com/open-policy-agent/opa/ast"

	"github.com/cupcake-policy/cupcake/internal/decision"
	"github.com/cupcake-policy/cupcake/internal/event"
)

// verbNames are the six decision-verb rule heads the scanner looks for,
// matching internal/decision's verb set.
var verbNames = map[string]bool{
	"halt": true, "deny": true, "block": true,
	"ask": true, "allow_override": true, "add_context": true,
}

// Diagnostic is one human-readable authoring-time finding.
type Diagnostic struct {
	File    string
	Line    int
	Rule    string
	Event   event.Kind
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: rule %q: %s (event %s)", d.File, d.Line, d.Rule, d.Message, d.Event)
}

// VerbRule is one `<verb> contains ...` rule head found in a policy file.
type VerbRule struct {
	Verb string
	Line int
}

// ScanFile parses a single Rego source file and returns every decision-verb
// partial-set rule head it defines (a rule of the form `<verb> contains
// x { ... }`). Rules using any other verb name are ignored — the
// matrix check only concerns itself with names the Synthesizer recognizes.
func ScanFile(filename, source string) ([]VerbRule, error) {
	module, err := ast.ParseModule(filename, source)
	if err != nil {
		return nil, fmt.Errorf("validator: parsing %s: %w", filename, err)
	}

	var found []VerbRule
	for _, rule := range module.Rules {
		if rule.Head == nil || rule.Head.Name == "" {
			continue
		}
		name := string(rule.Head.Name)
		if !verbNames[name] {
			continue
		}
		// A partial-set rule (`verb contains x`) has a Key but no Value;
		// a complete-document rule (`verb = x`) has neither form we
		// expect a decision verb to take, so it is skipped rather than
		// misreported as a contains-rule.
		if rule.Head.Key == nil {
			continue
		}
		line := 0
		if loc := rule.Head.Location; loc != nil {
			line = loc.Row
		}
		found = append(found, VerbRule{Verb: name, Line: line})
	}
	return found, nil
}

// CheckCompatibility checks a policy's verb rules against the matrix entry
// for every event the policy is routed under, returning one Diagnostic per
// violation.
func CheckCompatibility(file string, rules []VerbRule, routedEvents []event.Kind, caps func(event.Kind) decision.Capabilities) []Diagnostic {
	var diags []Diagnostic
	for _, evKind := range routedEvents {
		c := caps(evKind)
		for _, r := range rules {
			if !verbSupported(c, r.Verb) {
				diags = append(diags, Diagnostic{
					File:    file,
					Line:    r.Line,
					Rule:    r.Verb,
					Event:   evKind,
					Message: fmt.Sprintf("verb %q is not legal for event %s", r.Verb, evKind),
				})
			}
		}
	}
	return diags
}

func verbSupported(c decision.Capabilities, verb string) bool {
	switch verb {
	case "halt":
		return true // halt is universal across every event kind
	case "deny":
		return c.Deny
	case "block":
		return c.Block
	case "ask":
		return c.Ask
	case "allow_override":
		return c.AllowOverride
	case "add_context":
		return c.Context
	default:
		return false
	}
}
