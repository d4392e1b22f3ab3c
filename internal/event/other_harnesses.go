package event

// Cursor event kinds. Cursor's hook surface is narrower than Claude Code's:
// it has no explicit session lifecycle events, only tool-adjacent ones.
const (
	CursorBeforeShellExecution Kind = "beforeShellExecution"
	CursorBeforeMCPExecution   Kind = "beforeMCPExecution"
	CursorBeforeReadFile       Kind = "beforeReadFile"
	CursorAfterFileEdit        Kind = "afterFileEdit"
	CursorStop                 Kind = "stop"
)

var CursorKinds = []Kind{
	CursorBeforeShellExecution,
	CursorBeforeMCPExecution,
	CursorBeforeReadFile,
	CursorAfterFileEdit,
	CursorStop,
}

// OpenCode event kinds.
const (
	OpenCodeToolExecuteBefore Kind = "tool.execute.before"
	OpenCodeToolExecuteAfter  Kind = "tool.execute.after"
	OpenCodeSessionStart      Kind = "session.start"
	OpenCodeSessionEnd        Kind = "session.end"
)

var OpenCodeKinds = []Kind{
	OpenCodeToolExecuteBefore,
	OpenCodeToolExecuteAfter,
	OpenCodeSessionStart,
	OpenCodeSessionEnd,
}

// Factory event kinds.
const (
	FactoryPreToolUse  Kind = "pre_tool_use"
	FactoryPostToolUse Kind = "post_tool_use"
	FactorySessionEnd  Kind = "session_end"
)

var FactoryKinds = []Kind{
	FactoryPreToolUse,
	FactoryPostToolUse,
	FactorySessionEnd,
}

// KindsFor returns the set of event kinds a harness can emit, or nil for an
// unknown harness.
func KindsFor(h Harness) []Kind {
	switch h {
	case HarnessClaudeCode:
		return ClaudeKinds
	case HarnessCursor:
		return CursorKinds
	case HarnessOpenCode:
		return OpenCodeKinds
	case HarnessFactory:
		return FactoryKinds
	default:
		return nil
	}
}
