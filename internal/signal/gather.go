package signal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cupcake-policy/cupcake/internal/rulebook"
)

// Verifier is the subset of *trust.Verifier the Gatherer depends on, kept
// as an interface so tests can substitute a fake without touching the
// filesystem or HMAC machinery.
type Verifier interface {
	Verify(scriptPath string) error
}

// Gatherer resolves the set of signal names a routed event requires into
// their current values.
type Gatherer struct {
	Rulebook     *rulebook.Rulebook
	Verifier     Verifier // may be nil: then every script-path command is refused
	OutputCap    int64    // bytes; DefaultOutputCap when zero
	SessionStart func(sessionID string) time.Duration
	Log          zerolog.Logger
}

// outputCap returns the configured cap, or the package default.
func (g *Gatherer) outputCap() int64 {
	if g.OutputCap > 0 {
		return g.OutputCap
	}
	return DefaultOutputCap
}

// Gather resolves every name in required, launching all dynamic commands
// concurrently, and returns the name->value map the WASM input expects.
// Signals not present in required are never executed. A name with no
// matching definition in the rulebook is simply absent from the result —
// that is a routing/rulebook authoring mismatch, not a gather-time error.
func (g *Gatherer) Gather(ctx context.Context, required map[string]bool, sessionID string) map[string]interface{} {
	results := make(map[string]interface{}, len(required))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for name := range required {
		if resolve, ok := builtins[name]; ok {
			wg.Add(1)
			go func(name string, resolve builtinResolver) {
				defer wg.Done()
				val, err := resolve(g, sessionID)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					results[name] = FailureResult{Error: err.Error(), Success: false}
					return
				}
				results[name] = val
			}(name, resolve)
			continue
		}

		def, ok := g.Rulebook.Signals[name]
		if !ok {
			continue
		}

		if !def.IsDynamic() {
			mu.Lock()
			results[name] = *def.Static
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(name string, def rulebook.SignalDef) {
			defer wg.Done()
			val := g.runDynamic(ctx, def)
			mu.Lock()
			defer mu.Unlock()
			results[name] = val
		}(name, def)
	}

	wg.Wait()
	return results
}

// runDynamic spawns one signal command (no shell) and returns either the
// trimmed stdout string on success, or a FailureResult on any error.
func (g *Gatherer) runDynamic(ctx context.Context, def rulebook.SignalDef) interface{} {
	if isScriptPath(def.Command) {
		if g.Verifier == nil {
			return FailureResult{ExitCode: -1, Error: "no trust verifier configured for this project", Success: false}
		}
		if err := g.Verifier.Verify(def.Command); err != nil {
			return FailureResult{ExitCode: -1, Error: fmt.Sprintf("trust verification failed: %v", err), Success: false}
		}
	}

	timeout := def.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, def.Command, def.Args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, limit: g.outputCap()}
	cmd.Stderr = &limitedWriter{w: &stderr, limit: g.outputCap()}

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return FailureResult{ExitCode: -1, Output: stdout.String(), Error: "signal command timed out", Success: false}
	}
	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return FailureResult{ExitCode: exitCode, Output: stdout.String(), Error: stderr.String(), Success: false}
	}

	return strings.TrimSpace(stdout.String())
}

// isScriptPath reports whether cmd looks like a project-relative script
// path (and should therefore be trust-verified) rather than a bare
// system-binary name resolved against PATH (e.g. "git", "lsof"). The
// rulebook itself is the whitelist for the latter: a command only ever
// runs because some policy declared it as a required signal.
func isScriptPath(cmd string) bool {
	return strings.Contains(cmd, "/")
}

// limitedWriter caps how many bytes it will copy into an underlying
// buffer, silently discarding the remainder, rather than failing the
// whole command when a chatty process exceeds the cap.
type limitedWriter struct {
	w     io.Writer
	limit int64
	n     int64
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	total := len(p)
	if l.n >= l.limit {
		return total, nil
	}
	remaining := l.limit - l.n
	chunk := p
	if int64(len(chunk)) > remaining {
		chunk = chunk[:remaining]
	}
	written, err := l.w.Write(chunk)
	l.n += int64(written)
	if err != nil {
		return written, err
	}
	return total, nil
}
