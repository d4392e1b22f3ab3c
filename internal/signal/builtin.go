package signal

import "time"

// builtins maps a builtin signal name to the function that synthesizes it.
// Builtin signals never go through the rulebook or the Trust Verifier —
// they are generated by the engine itself from its own state.
var builtins = map[string]builtinResolver{
	"session_duration_seconds": resolveSessionDuration,
}

// resolveSessionDuration reports how long the current session has been
// running, as a signal any policy can declare in required_signals to
// implement its own session-fatigue warnings.
func resolveSessionDuration(g *Gatherer, sessionID string) (interface{}, error) {
	if g.SessionStart == nil {
		return 0.0, nil
	}
	d := g.SessionStart(sessionID)
	return d.Round(time.Second).Seconds(), nil
}
