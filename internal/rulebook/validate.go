package rulebook

import "fmt"

// InvalidSignalError reports a signal definition that is neither static nor
// dynamic, or that declares both.
type InvalidSignalError struct {
	Name   string
	Reason string
}

func (e *InvalidSignalError) Error() string {
	return fmt.Sprintf("rulebook: signal %q: %s", e.Name, e.Reason)
}

// Validate checks that every signal declares exactly one of a static value
// or a command, and that every action command names a non-empty command.
func (rb *Rulebook) Validate() error {
	for name, def := range rb.Signals {
		hasStatic := def.Static != nil
		hasCommand := def.Command != ""
		switch {
		case hasStatic && hasCommand:
			return &InvalidSignalError{Name: name, Reason: "declares both static and command"}
		case !hasStatic && !hasCommand:
			return &InvalidSignalError{Name: name, Reason: "declares neither static nor command"}
		}
	}
	for _, cmds := range rb.Actions.ByRuleID {
		if err := validateActionCommands(cmds); err != nil {
			return err
		}
	}
	for _, cmds := range rb.Actions.ByEvent {
		if err := validateActionCommands(cmds); err != nil {
			return err
		}
	}
	return validateActionCommands(rb.Actions.OnAnyDenial)
}

func validateActionCommands(cmds []ActionCommand) error {
	for _, c := range cmds {
		if c.Command == "" {
			return fmt.Errorf("rulebook: action command missing command field")
		}
	}
	return nil
}
