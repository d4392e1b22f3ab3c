package event

// Claude Code event kinds. Only PreToolUse and PostToolUse carry a
// tool name and tool input; the rest are lifecycle notifications.
const (
	ClaudePreToolUse       Kind = "PreToolUse"
	ClaudePostToolUse      Kind = "PostToolUse"
	ClaudeUserPromptSubmit Kind = "UserPromptSubmit"
	ClaudeSessionStart     Kind = "SessionStart"
	ClaudeSessionEnd       Kind = "SessionEnd"
	ClaudeStop             Kind = "Stop"
	ClaudeSubagentStop     Kind = "SubagentStop"
	ClaudePreCompact       Kind = "PreCompact"
	ClaudeNotification     Kind = "Notification"
)

// ClaudeKinds enumerates every event kind the Claude Code harness can emit.
// The Router does not consult this list: its Lookup returns an empty entry
// for any kind with no registered policies.
var ClaudeKinds = []Kind{
	ClaudePreToolUse,
	ClaudePostToolUse,
	ClaudeUserPromptSubmit,
	ClaudeSessionStart,
	ClaudeSessionEnd,
	ClaudeStop,
	ClaudeSubagentStop,
	ClaudePreCompact,
	ClaudeNotification,
}
