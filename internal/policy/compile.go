package policy

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// bundleWasmEntry is the fixed path the opa CLI writes a WASM-target
// bundle's compiled module to, inside the tarball it produces.
const bundleWasmEntry = "/policy.wasm"

// CompileBundle shells out to the opa binary at opaPath to compile every
// Policy Unit in units into a single WASM module exposing entrypoint,
// returning the compiled module's bytes. This is the one place Cupcake
// depends on an external opa binary rather than the opa Go module directly:
// OPA's Go API does not expose WASM bundle compilation (the compiler
// backend that lowers the aggregation entrypoint's walk() to WASM lives in
// the opa CLI, not an importable package), so --opa-path names the binary
// to invoke.
func CompileBundle(ctx context.Context, opaPath string, units []*Unit, entrypoint string) ([]byte, error) {
	srcDir, err := os.MkdirTemp("", "cupcake-policy-src-")
	if err != nil {
		return nil, fmt.Errorf("policy: creating source staging dir: %w", err)
	}
	defer os.RemoveAll(srcDir)

	for i, u := range units {
		name := filepath.Join(srcDir, fmt.Sprintf("unit_%d.rego", i))
		if err := os.WriteFile(name, []byte(u.Source), 0o644); err != nil {
			return nil, fmt.Errorf("policy: staging %s: %w", u.Name, err)
		}
	}

	outFile, err := os.CreateTemp("", "cupcake-policy-bundle-*.tar.gz")
	if err != nil {
		return nil, fmt.Errorf("policy: creating bundle output file: %w", err)
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, opaPath, "build",
		"-t", "wasm",
		"-e", entrypoint,
		"-o", outPath,
		srcDir,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &CompileError{Entrypoint: entrypoint, Stderr: stderr.String(), Cause: err}
	}

	return extractWasm(outPath)
}

func extractWasm(bundlePath string) ([]byte, error) {
	f, err := os.Open(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("policy: opening compiled bundle: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("policy: decompressing compiled bundle: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("policy: compiled bundle has no %s entry", bundleWasmEntry)
		}
		if err != nil {
			return nil, fmt.Errorf("policy: reading compiled bundle: %w", err)
		}
		if hdr.Name != bundleWasmEntry && hdr.Name != bundleWasmEntry[1:] {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("policy: reading %s from compiled bundle: %w", bundleWasmEntry, err)
		}
		return data, nil
	}
}

// CompileError reports a failed opa build invocation, carrying its stderr
// so the CLI layer can surface the compiler's own diagnostics verbatim.
type CompileError struct {
	Entrypoint string
	Stderr     string
	Cause      error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("policy: opa build -e %s failed: %v\n%s", e.Entrypoint, e.Cause, e.Stderr)
}

func (e *CompileError) Unwrap() error { return e.Cause }
