package main

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/cupcake-policy/cupcake/internal/diag"
	"github.com/cupcake-policy/cupcake/internal/engine"
	"github.com/cupcake-policy/cupcake/internal/preprocess"
	"github.com/cupcake-policy/cupcake/internal/rulebook"
	"github.com/cupcake-policy/cupcake/internal/trust"
)

const (
	globalPoliciesDir  = "policies/global"
	projectPoliciesDir = "policies/project"
	projectRulebookName = "rulebook.yml"
)

// projectRoot resolves the directory the CLI operates against: the
// current working directory, matching every hook harness's convention of
// invoking the CLI from inside the repository being governed.
func projectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	return dir, nil
}

// loadRulebooks loads the project rulebook (always, if present) and the
// global rulebook (only when --global-config names one), merging global
// over project per internal/rulebook.Merge's additive/override rules.
func loadRulebooks(root string) (*rulebook.Rulebook, error) {
	projectPath := filepath.Join(root, ".cupcake", projectRulebookName)
	project := rulebook.Empty()
	if _, err := os.Stat(projectPath); err == nil {
		loaded, err := rulebook.Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading project rulebook: %w", err)
		}
		project = loaded
	}

	if globalFlags.globalConfig == "" {
		return project, nil
	}
	global, err := rulebook.Load(globalFlags.globalConfig)
	if err != nil {
		return nil, fmt.Errorf("loading global rulebook: %w", err)
	}
	return rulebook.Merge(global, project), nil
}

// trustKey derives the host-bound HMAC key for the trust manifest at root,
// or returns nil if no manifest exists yet — a project that has never run
// `cupcake trust init` runs with trust verification disabled, and any
// signal or action that names a script path fails instead of running
// unverified (see internal/signal.Gatherer.runDynamic).
func trustKey(root string) ([]byte, error) {
	if _, err := os.Stat(trust.ManifestPath(root)); err != nil {
		return nil, nil
	}
	machineID, err := trust.ResolveMachineID()
	if err != nil {
		return nil, fmt.Errorf("resolving machine identity for trust verification: %w", err)
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolving executable path for trust verification: %w", err)
	}
	u, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("resolving current user for trust verification: %w", err)
	}
	return trust.DeriveKey(trust.KeyMaterial{
		MachineID:      machineID,
		ExecutablePath: exe,
		Username:       u.Username,
		ProjectRoot:    root,
	}), nil
}

// buildEngine constructs an Engine from the CLI's persistent flags, the
// on-disk rulebooks, and whatever policy/trust state already exists under
// root/.cupcake.
func buildEngine(ctx context.Context, harnessName string) (*engine.Engine, error) {
	if err := validateGlobalConfigPath(globalFlags.globalConfig); err != nil {
		return nil, err
	}
	if err := validateOpaPath(globalFlags.opaPath); err != nil {
		return nil, err
	}

	h, err := parseHarness(harnessName)
	if err != nil {
		return nil, err
	}

	root, err := projectRoot()
	if err != nil {
		return nil, err
	}

	log, modules, err := newRootLogger()
	if err != nil {
		return nil, err
	}

	rb, err := loadRulebooks(root)
	if err != nil {
		return nil, err
	}

	key, err := trustKey(root)
	if err != nil {
		return nil, err
	}

	maxMemory, err := parseWASMMemory(globalFlags.wasmMaxMemory)
	if err != nil {
		return nil, err
	}

	cupcakeDir := filepath.Join(root, ".cupcake")
	cfg := engine.Config{
		ProjectRoot:       root,
		Harness:           h,
		GlobalPolicyDir:   existingDir(filepath.Join(cupcakeDir, globalPoliciesDir)),
		ProjectPolicyDir:  existingDir(filepath.Join(cupcakeDir, projectPoliciesDir)),
		OpaPath:           globalFlags.opaPath,
		WASMMaxMemory:     maxMemory,
		PreprocessOptions: preprocess.DefaultOptions(),
		TrustKey:          key,
		Rulebook:          rb,
		Log:               log,
		Modules:           modules,
		Sessions:          diag.NewSessionRegistry(),
		Activity:          diag.NewActivitySink(root),
	}

	return engine.New(ctx, cfg)
}

// existingDir returns dir unchanged if it exists, or "" otherwise — engine.Config
// treats an empty policy dir as "this phase has no policies", not an error.
func existingDir(dir string) string {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir
	}
	return ""
}
