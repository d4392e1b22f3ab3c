package rulebook

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load parses the rulebook at path. A missing path is not an error for the
// global rulebook (callers pass "" to mean "no global rulebook configured"
// and should not call Load at all in that case); Load itself always
// requires the file to exist once called.
func Load(path string) (*Rulebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rulebook: reading %s: %w", path, err)
	}
	rb := Empty()
	if err := yaml.Unmarshal(data, rb); err != nil {
		return nil, fmt.Errorf("rulebook: parsing %s: %w", path, err)
	}
	if rb.Signals == nil {
		rb.Signals = map[string]SignalDef{}
	}
	if rb.Actions.ByRuleID == nil {
		rb.Actions.ByRuleID = map[string][]ActionCommand{}
	}
	if rb.Actions.ByEvent == nil {
		rb.Actions.ByEvent = map[string][]ActionCommand{}
	}
	if rb.Builtins == nil {
		rb.Builtins = map[string]BuiltinConfig{}
	}
	return rb, nil
}
