package harness

import (
	"encoding/json"
	"fmt"

	"github.com/cupcake-policy/cupcake/internal/event"
)

// cursorWireEvent, openCodeWireEvent, and factoryWireEvent mirror
// claudeWireEvent but for their respective harnesses' field naming. Cupcake's
// routing, signal gathering, WASM evaluation, and synthesis are all
// harness-agnostic once an event reaches the Envelope shape; only parsing and
// formatting are harness-specific.

type cursorWireEvent struct {
	HookType  string          `json:"hook_type"`
	SessionID string          `json:"conversation_id"`
	CWD       string          `json:"workspace_root"`
	Command   string          `json:"command"`
	ToolName  string          `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input"`
}

func ParseCursor(raw []byte) (*event.Envelope, error) {
	var w cursorWireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parsing cursor event: %w", err)
	}
	if w.HookType == "" {
		return nil, fmt.Errorf("parsing cursor event: missing hook_type")
	}
	input := w.ToolInput
	if input == nil && w.Command != "" {
		input, _ = json.Marshal(map[string]string{"command": w.Command})
	}
	return &event.Envelope{
		Harness:   event.HarnessCursor,
		Kind:      event.Kind(w.HookType),
		SessionID: w.SessionID,
		CWD:       w.CWD,
		ToolName:  w.ToolName,
		ToolInput: input,
	}, nil
}

type openCodeWireEvent struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionID"`
	CWD       string          `json:"cwd"`
	ToolName  string          `json:"tool"`
	ToolInput json.RawMessage `json:"args"`
}

func ParseOpenCode(raw []byte) (*event.Envelope, error) {
	var w openCodeWireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parsing opencode event: %w", err)
	}
	if w.Type == "" {
		return nil, fmt.Errorf("parsing opencode event: missing type")
	}
	return &event.Envelope{
		Harness:   event.HarnessOpenCode,
		Kind:      event.Kind(w.Type),
		SessionID: w.SessionID,
		CWD:       w.CWD,
		ToolName:  w.ToolName,
		ToolInput: w.ToolInput,
	}, nil
}

type factoryWireEvent struct {
	Event     string          `json:"event"`
	SessionID string          `json:"session_id"`
	CWD       string          `json:"cwd"`
	ToolName  string          `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input"`
}

func ParseFactory(raw []byte) (*event.Envelope, error) {
	var w factoryWireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parsing factory event: %w", err)
	}
	if w.Event == "" {
		return nil, fmt.Errorf("parsing factory event: missing event")
	}
	return &event.Envelope{
		Harness:   event.HarnessFactory,
		Kind:      event.Kind(w.Event),
		SessionID: w.SessionID,
		CWD:       w.CWD,
		ToolName:  w.ToolName,
		ToolInput: w.ToolInput,
	}, nil
}

// ParseEvent dispatches to the harness-appropriate parser.
func ParseEvent(h event.Harness, raw []byte) (*event.Envelope, error) {
	switch h {
	case event.HarnessClaudeCode:
		return ParseClaudeCode(raw)
	case event.HarnessCursor:
		return ParseCursor(raw)
	case event.HarnessOpenCode:
		return ParseOpenCode(raw)
	case event.HarnessFactory:
		return ParseFactory(raw)
	default:
		return nil, fmt.Errorf("unknown harness %q", h)
	}
}
