package harness

import (
	"github.com/cupcake-policy/cupcake/internal/decision"
	"github.com/cupcake-policy/cupcake/internal/event"
)

// Cursor, OpenCode, and Factory map their narrower hook surfaces onto the
// same six-verb vocabulary. Each before-* hook behaves like PreToolUse; each
// after-*/post-* hook behaves like PostToolUse; lifecycle-only hooks behave
// like Stop.

func cursorCapabilities(k event.Kind) decision.Capabilities {
	switch k {
	case event.CursorBeforeShellExecution, event.CursorBeforeMCPExecution, event.CursorBeforeReadFile:
		return decision.Capabilities{Deny: true, Ask: true, AllowOverride: true}
	case event.CursorAfterFileEdit:
		return decision.Capabilities{Block: true, AllowOverride: true, Context: true}
	case event.CursorStop:
		return decision.Capabilities{Block: true}
	default:
		return decision.Capabilities{}
	}
}

func openCodeCapabilities(k event.Kind) decision.Capabilities {
	switch k {
	case event.OpenCodeToolExecuteBefore:
		return decision.Capabilities{Deny: true, Ask: true, AllowOverride: true}
	case event.OpenCodeToolExecuteAfter:
		return decision.Capabilities{Block: true, AllowOverride: true, Context: true}
	case event.OpenCodeSessionStart:
		return decision.Capabilities{Context: true}
	case event.OpenCodeSessionEnd:
		return decision.Capabilities{}
	default:
		return decision.Capabilities{}
	}
}

func factoryCapabilities(k event.Kind) decision.Capabilities {
	switch k {
	case event.FactoryPreToolUse:
		return decision.Capabilities{Deny: true, Ask: true, AllowOverride: true}
	case event.FactoryPostToolUse:
		return decision.Capabilities{Block: true, AllowOverride: true, Context: true}
	case event.FactorySessionEnd:
		return decision.Capabilities{}
	default:
		return decision.Capabilities{}
	}
}
