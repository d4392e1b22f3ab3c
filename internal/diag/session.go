package diag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SessionRegistry tracks when each session was first observed, giving the
// session_duration_seconds builtin signal something to compute from without
// hardcoding session bookkeeping into the engine's evaluation path.
type SessionRegistry struct {
	mu      sync.RWMutex
	started map[string]time.Time
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{started: make(map[string]time.Time)}
}

// Touch records the first-seen time for sessionID, if not already recorded,
// and returns the elapsed duration since that first observation.
func (r *SessionRegistry) Touch(sessionID string, now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	start, ok := r.started[sessionID]
	if !ok {
		r.started[sessionID] = now
		return 0
	}
	return now.Sub(start)
}

// Forget drops a session's bookkeeping, called on SessionEnd so the
// registry does not grow unbounded across a long-running engine process.
func (r *SessionRegistry) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.started, sessionID)
}

// ActivityEvent is one line of a session's activity trace: which routing
// key fired, how many policies and signals were involved, and what the
// final decision verb was. Written only when --trace eval or --trace
// routing selects the sink.
type ActivityEvent struct {
	Timestamp      time.Time `json:"timestamp"`
	SessionID      string    `json:"session_id"`
	CorrelationID  string    `json:"correlation_id"`
	RoutingKey     string    `json:"routing_key"`
	PoliciesCount  int       `json:"policies_count"`
	SignalsGathered []string `json:"signals_gathered,omitempty"`
	FinalVerb      string    `json:"final_verb"`
}

// ActivitySink appends one JSON line per evaluation to a per-session file
// under <projectRoot>/.cupcake/trace/<session_id>.jsonl.
type ActivitySink struct {
	traceDir string
}

// NewActivitySink returns a sink rooted at projectRoot. The directory is
// created lazily on first write, not at construction.
func NewActivitySink(projectRoot string) *ActivitySink {
	return &ActivitySink{traceDir: filepath.Join(projectRoot, ".cupcake", "trace")}
}

// Record appends ev to its session's trace file. Failures are swallowed
// after being returned to the caller to log — tracing never blocks
// evaluation.
func (s *ActivitySink) Record(ev ActivityEvent) error {
	if err := os.MkdirAll(s.traceDir, 0o755); err != nil {
		return fmt.Errorf("diag: creating trace directory: %w", err)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("diag: marshaling activity event: %w", err)
	}
	path := filepath.Join(s.traceDir, ev.SessionID+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("diag: opening trace file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("diag: writing trace line: %w", err)
	}
	return nil
}
