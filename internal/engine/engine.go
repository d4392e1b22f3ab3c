// Package engine wires every other internal package into the steady-state
// pipeline described by the component design: preprocess, route, gather
// signals, evaluate the global and project WASM phases, synthesize, fire
// actions, format. One Engine is built at process start from a Config and
// reused across every event the CLI layer feeds it.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/cupcake-policy/cupcake/internal/decision"
	"github.com/cupcake-policy/cupcake/internal/diag"
	"github.com/cupcake-policy/cupcake/internal/event"
	"github.com/cupcake-policy/cupcake/internal/harness"
	"github.com/cupcake-policy/cupcake/internal/policy"
	"github.com/cupcake-policy/cupcake/internal/preprocess"
	"github.com/cupcake-policy/cupcake/internal/router"
	"github.com/cupcake-policy/cupcake/internal/rulebook"
	"github.com/cupcake-policy/cupcake/internal/signal"
	"github.com/cupcake-policy/cupcake/internal/trust"
)

const (
	globalEntrypoint  = "cupcake/global/system/evaluate"
	projectEntrypoint = "cupcake/system/evaluate"
)

// Config holds everything needed to construct an Engine. Every WASM- and
// trust-related field is optional: an Engine can be constructed for a
// project with no policies or no trust manifest, degrading to a
// pass-through Allow pipeline via the Router's empty-result short-circuit.
type Config struct {
	ProjectRoot       string
	Harness           event.Harness
	GlobalPolicyDir   string // may not exist; no global phase then
	ProjectPolicyDir  string // may not exist; no project phase then
	OpaPath           string // required only if policy dirs are non-empty
	WASMMaxMemory     uint32
	PreprocessOptions preprocess.Options
	TrustKey          []byte // nil means no verifier: every script-path signal and action is refused
	Rulebook          *rulebook.Rulebook
	Log               zerolog.Logger
	Modules           map[diag.Module]bool
	Sessions          *diag.SessionRegistry
	Activity          *diag.ActivitySink
}

// Engine is the long-lived, read-only evaluation handle. All of its fields
// are acquired once at New and never mutated, so concurrent Eval calls are
// safe without additional locking (the WASM modules are not reentered
// concurrently within one Eval call, but two concurrent Eval calls each use
// their own WASM call — wazero modules support this as long as exported
// functions aren't invoked from two goroutines at once; the engine serializes
// that per Module with its own internal mutex, see phase.go).
type Engine struct {
	cfg      Config
	log      zerolog.Logger
	verifier *trust.Verifier
	rb       *rulebook.Rulebook

	globalRouter  *router.Map
	projectRouter *router.Map
	globalPhase   *phase
	projectPhase  *phase
}

// New compiles policies, builds the routing maps, loads the trust
// manifest, and returns a ready-to-use Engine. Every failure here is a
// configuration error per the error taxonomy: fatal at startup.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	log := diag.ForModule(cfg.Log, cfg.Modules, diag.ModuleEval)

	rb := cfg.Rulebook
	if rb == nil {
		rb = rulebook.Empty()
	}

	var verifier *trust.Verifier
	if cfg.TrustKey != nil {
		v, err := trust.NewVerifier(cfg.ProjectRoot, cfg.TrustKey)
		if err != nil {
			return nil, fmt.Errorf("engine: loading trust manifest: %w", err)
		}
		verifier = v
	}

	globalUnits, err := loadPolicyDir(cfg.GlobalPolicyDir, policy.NamespaceGlobal)
	if err != nil {
		return nil, err
	}
	projectUnits, err := loadPolicyDir(cfg.ProjectPolicyDir, policy.NamespaceProject)
	if err != nil {
		return nil, err
	}

	globalRouter, err := router.Build(globalUnits)
	if err != nil {
		return nil, fmt.Errorf("engine: building global routing map: %w", err)
	}
	projectRouter, err := router.Build(projectUnits)
	if err != nil {
		return nil, fmt.Errorf("engine: building project routing map: %w", err)
	}

	globalPhase, err := newPhase(ctx, "global", cfg.OpaPath, globalUnits, globalEntrypoint, cfg.WASMMaxMemory)
	if err != nil {
		return nil, err
	}
	projectPhase, err := newPhase(ctx, "project", cfg.OpaPath, projectUnits, projectEntrypoint, cfg.WASMMaxMemory)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:           cfg,
		log:           log,
		verifier:      verifier,
		rb:            rb,
		globalRouter:  globalRouter,
		projectRouter: projectRouter,
		globalPhase:   globalPhase,
		projectPhase:  projectPhase,
	}, nil
}

// Close tears down any compiled WASM modules.
func (e *Engine) Close(ctx context.Context) error {
	var firstErr error
	if e.globalPhase != nil {
		if err := e.globalPhase.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if e.projectPhase != nil {
		if err := e.projectPhase.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// loadPolicyDir loads every Policy Unit under dir, or returns an empty
// slice if dir is empty — an engine with no configured policy directory
// for a phase simply never runs that phase.
func loadPolicyDir(dir string, ns policy.Namespace) ([]*policy.Unit, error) {
	if dir == "" {
		return nil, nil
	}
	units, err := policy.Load(dir, ns)
	if err != nil {
		return nil, fmt.Errorf("engine: loading %s policies: %w", ns, err)
	}
	for _, u := range units {
		if err := u.Validate(); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}
	return units, nil
}

// Eval runs one event through the full pipeline and returns the
// harness-formatted response ready to marshal to stdout.
func (e *Engine) Eval(ctx context.Context, raw []byte) (harness.Response, error) {
	correlationID := diag.NewCorrelationID()
	log := e.log.With().Str("correlation_id", correlationID).Logger()

	env, err := harness.ParseEvent(e.cfg.Harness, raw)
	if err != nil {
		return harness.Response{}, fmt.Errorf("engine: parsing event: %w", err)
	}

	if e.cfg.Sessions != nil {
		e.cfg.Sessions.Touch(env.SessionID, evalTime())
		if env.Kind == event.ClaudeSessionEnd {
			defer e.cfg.Sessions.Forget(env.SessionID)
		}
	}

	enriched := preprocess.Process(diag.ForModule(log, e.cfg.Modules, diag.ModuleEval), env, e.cfg.PreprocessOptions)

	globalEntry := lookup(e.globalRouter, enriched)
	projectEntry := lookup(e.projectRouter, enriched)

	caps := harness.CapabilitiesFor(e.cfg.Harness, enriched.Kind)

	if len(globalEntry.Units) == 0 && len(projectEntry.Units) == 0 {
		resp, err := harness.Format(e.cfg.Harness, enriched.Kind, decision.Raw{Verb: decision.VerbAllow})
		e.recordActivity(correlationID, enriched, 0, nil, string(decision.VerbAllow))
		return resp, err
	}

	required := map[string]bool{}
	for s := range globalEntry.RequiredSignals {
		required[s] = true
	}
	for s := range projectEntry.RequiredSignals {
		required[s] = true
	}

	gatherer := &signal.Gatherer{
		Rulebook: e.rb,
		SessionStart: func(sessionID string) time.Duration {
			if e.cfg.Sessions == nil {
				return 0
			}
			return e.cfg.Sessions.Touch(sessionID, evalTime())
		},
		Log: diag.ForModule(log, e.cfg.Modules, diag.ModuleSignals),
	}
	// A nil *trust.Verifier must never be assigned to the Verifier
	// interface field directly: doing so produces a non-nil interface
	// wrapping a nil pointer, and signal.Gatherer's nil check would then
	// see a "configured" verifier and panic dereferencing it.
	if e.verifier != nil {
		gatherer.Verifier = e.verifier
	}
	signals := gatherer.Gather(ctx, required, enriched.SessionID)

	input := buildWASMInput(enriched, signals)

	var carriedContext decision.Set
	finalRaw := decision.Raw{Verb: decision.VerbAllow}
	skipProject := false

	if len(globalEntry.Units) > 0 && e.globalPhase != nil {
		set, err := e.globalPhase.Eval(ctx, input)
		if err != nil {
			e.cfg.Log.Error().Err(err).Str("correlation_id", correlationID).Str("phase", "global").Msg("policy evaluation failed")
			return haltResponseForError(e.cfg.Harness, enriched.Kind, "global", err)
		}
		raw := decision.Synthesize(diag.ForModule(log, e.cfg.Modules, diag.ModuleSynthesis), set, caps)
		if raw.Verb == decision.VerbHalt || raw.Verb == decision.VerbDeny || raw.Verb == decision.VerbBlock {
			finalRaw = raw
			skipProject = true
		} else {
			carriedContext = set.OnlyAddContext()
		}
	}

	if !skipProject {
		combined := carriedContext
		if len(projectEntry.Units) > 0 && e.projectPhase != nil {
			set, err := e.projectPhase.Eval(ctx, input)
			if err != nil {
				e.cfg.Log.Error().Err(err).Str("correlation_id", correlationID).Str("phase", "project").Msg("policy evaluation failed")
				return haltResponseForError(e.cfg.Harness, enriched.Kind, "project", err)
			}
			combined = combined.Merge(set)
		}
		finalRaw = decision.Synthesize(diag.ForModule(log, e.cfg.Modules, diag.ModuleSynthesis), combined, caps)
	}

	e.runActions(finalRaw, enriched)
	e.recordActivity(correlationID, enriched, len(globalEntry.Units)+len(projectEntry.Units), signalNames(signals), string(finalRaw.Verb))

	return harness.Format(e.cfg.Harness, enriched.Kind, finalRaw)
}

func lookup(m *router.Map, env *event.Envelope) *router.Entry {
	if m == nil {
		return &router.Entry{RequiredSignals: map[string]bool{}}
	}
	return m.Lookup(env)
}

// haltResponseForError implements §7's WASM-error handling: any trap is
// surfaced as a fail-safe Halt rather than bubbled up as an opaque error,
// so a divergent or broken policy bundle stops the agent instead of
// silently allowing it through.
func haltResponseForError(h event.Harness, k event.Kind, phaseName string, cause error) (harness.Response, error) {
	raw := decision.Raw{Verb: decision.VerbHalt, Halt: &decision.Halt{
		RuleID: "engine.wasm_error",
		Reason: fmt.Sprintf("policy evaluation failed during the %s phase; stopping for safety", phaseName),
	}}
	_ = cause // logged by Eval before this call; not echoed to the agent (§7 propagation policy)
	return harness.Format(h, k, raw)
}

func signalNames(signals map[string]interface{}) []string {
	names := make([]string, 0, len(signals))
	for k := range signals {
		names = append(names, k)
	}
	return names
}

func (e *Engine) recordActivity(correlationID string, env *event.Envelope, policiesCount int, signalsGathered []string, finalVerb string) {
	if e.cfg.Activity == nil {
		return
	}
	if !e.cfg.Modules[diag.ModuleAll] && !e.cfg.Modules[diag.ModuleEval] && !e.cfg.Modules[diag.ModuleRouting] {
		return
	}
	err := e.cfg.Activity.Record(diag.ActivityEvent{
		Timestamp:       evalTime(),
		SessionID:       env.SessionID,
		CorrelationID:   correlationID,
		RoutingKey:      env.RoutingKey(),
		PoliciesCount:   policiesCount,
		SignalsGathered: signalsGathered,
		FinalVerb:       finalVerb,
	})
	if err != nil {
		e.cfg.Log.Warn().Err(err).Msg("activity trace write failed")
	}
}

// runActions launches every rulebook action command matching the final
// decision, fire-and-forget: a failing command is logged with its error
// (output is not captured), and never changes the response already being
// returned to the harness.
func (e *Engine) runActions(raw decision.Raw, env *event.Envelope) {
	var cmds []rulebook.ActionCommand
	ruleID := ruleIDFor(raw)

	if raw.Verb == decision.VerbDeny || raw.Verb == decision.VerbBlock || raw.Verb == decision.VerbHalt {
		cmds = append(cmds, e.rb.Actions.OnAnyDenial...)
	}
	if ruleID != "" {
		cmds = append(cmds, e.rb.Actions.ByRuleID[ruleID]...)
	}
	cmds = append(cmds, e.rb.Actions.ByEvent[string(env.Kind)]...)

	for _, c := range cmds {
		go e.runAction(c, env)
	}
}

func (e *Engine) runAction(c rulebook.ActionCommand, env *event.Envelope) {
	log := diag.ForModule(e.log, e.cfg.Modules, diag.ModuleEval)
	if isScriptPath(c.Command) {
		if e.verifier == nil {
			log.Warn().Str("command", c.Command).Msg("action: no trust verifier configured, skipping")
			return
		}
		if err := e.verifier.Verify(c.Command); err != nil {
			log.Warn().Err(err).Str("command", c.Command).Msg("action: trust verification failed, skipping")
			return
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), signal.DefaultTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	if err := cmd.Run(); err != nil {
		log.Warn().Err(err).Str("command", c.Command).Msg("action command failed")
	}
}

func isScriptPath(cmd string) bool {
	for i := 0; i < len(cmd); i++ {
		if cmd[i] == '/' {
			return true
		}
	}
	return false
}

func ruleIDFor(raw decision.Raw) string {
	switch raw.Verb {
	case decision.VerbHalt:
		return raw.Halt.RuleID
	case decision.VerbDeny:
		return raw.Deny.RuleID
	case decision.VerbBlock:
		return raw.Block.RuleID
	case decision.VerbAsk:
		return raw.Ask.RuleID
	case decision.VerbAllowOverride:
		return raw.AllowOverride.RuleID
	default:
		return ""
	}
}

// wasmInput is the fixed JSON shape handed to each phase's evaluate
// entrypoint: the enriched envelope's fields flattened to the top level
// (so policies write input.tool_name, input.preprocessing.inspected_script)
// plus the gathered signal values under input.signals.
type wasmInput struct {
	SessionID      string                 `json:"session_id"`
	TranscriptPath string                 `json:"transcript_path"`
	CWD            string                 `json:"cwd"`
	ToolName       string                 `json:"tool_name,omitempty"`
	ToolInput      json.RawMessage        `json:"tool_input,omitempty"`
	Preprocessing  event.Preprocessing    `json:"preprocessing"`
	Signals        map[string]interface{} `json:"signals"`
}

func buildWASMInput(env *event.Envelope, signals map[string]interface{}) wasmInput {
	return wasmInput{
		SessionID:      env.SessionID,
		TranscriptPath: env.TranscriptPath,
		CWD:            env.CWD,
		ToolName:       env.ToolName,
		ToolInput:      env.ToolInput,
		Preprocessing:  env.Preprocessing,
		Signals:        signals,
	}
}

// evalTime is the one place the engine reads wall-clock time, kept
// separate so tests can substitute it if a future change threads a clock
// through Config.
var evalTime = time.Now
