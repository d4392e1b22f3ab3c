package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/open-policy-agent/opa/ast"

	"github.com/cupcake-policy/cupcake/internal/event"
)

// Load parses every .rego file under dir into a Policy Unit. Routing
// metadata (required_events, required_tools, required_signals) is read
// from each file's package-scoped METADATA block:
//
//	# METADATA
//	# scope: package
//	# custom:
//	#   required_events: ["PreToolUse"]
//	#   required_tools: ["Bash"]
//	#   required_signals: ["git_status"]
//	package cupcake.policies.bash_guard
//
// A file with no package-scoped METADATA block, or one missing
// required_events, fails Unit.Validate once loaded — Load itself only
// fails on a parse error or an unreadable file.
func Load(dir string, ns Namespace) ([]*Unit, error) {
	var units []*Unit
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".rego") {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("policy: reading %s: %w", path, err)
		}
		u, err := parseUnit(path, string(src), ns)
		if err != nil {
			return err
		}
		units = append(units, u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}

func parseUnit(path, src string, ns Namespace) (*Unit, error) {
	module, err := ast.ParseModuleWithOpts(path, src, ast.ParserOptions{ProcessAnnotation: true})
	if err != nil {
		return nil, fmt.Errorf("policy: parsing %s: %w", path, err)
	}

	u := &Unit{
		Name:            module.Package.Path.String(),
		Namespace:       ns,
		Source:          src,
		RequiredEvents:  map[event.Kind]bool{},
		RequiredTools:   map[string]bool{},
		RequiredSignals: map[string]bool{},
	}

	for _, a := range module.Annotations {
		if a.Scope != "package" || a.Custom == nil {
			continue
		}
		for _, k := range stringList(a.Custom["required_events"]) {
			u.RequiredEvents[event.Kind(k)] = true
		}
		for _, k := range stringList(a.Custom["required_tools"]) {
			u.RequiredTools[k] = true
		}
		for _, k := range stringList(a.Custom["required_signals"]) {
			u.RequiredSignals[k] = true
		}
	}

	return u, nil
}

// stringList coerces a METADATA custom field (decoded as interface{}) into
// a string slice, tolerating the absent-field and wrong-type cases by
// returning nil rather than panicking — a malformed custom block simply
// yields an empty routing set, which Unit.Validate then rejects.
func stringList(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
