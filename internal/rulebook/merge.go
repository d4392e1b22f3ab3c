package rulebook

// Merge combines a global and a project rulebook: global signals and
// actions are additive to project's (a name collision keeps the global
// definition, since global is described as higher authority), while global
// builtin configuration overrides project builtin configuration under the
// same key. A nil global is treated as empty.
func Merge(global, project *Rulebook) *Rulebook {
	if global == nil {
		global = Empty()
	}
	if project == nil {
		project = Empty()
	}

	out := Empty()

	for name, def := range project.Signals {
		out.Signals[name] = def
	}
	for name, def := range global.Signals {
		out.Signals[name] = def
	}

	out.Actions.OnAnyDenial = append(append([]ActionCommand{}, project.Actions.OnAnyDenial...), global.Actions.OnAnyDenial...)
	out.Actions.ByRuleID = mergeActionLists(project.Actions.ByRuleID, global.Actions.ByRuleID)
	out.Actions.ByEvent = mergeActionLists(project.Actions.ByEvent, global.Actions.ByEvent)

	for name, cfg := range project.Builtins {
		out.Builtins[name] = cfg
	}
	for name, cfg := range global.Builtins {
		out.Builtins[name] = cfg
	}

	return out
}

func mergeActionLists(project, global map[string][]ActionCommand) map[string][]ActionCommand {
	out := make(map[string][]ActionCommand, len(project)+len(global))
	for k, v := range project {
		out[k] = append([]ActionCommand{}, v...)
	}
	for k, v := range global {
		out[k] = append(out[k], v...)
	}
	return out
}
