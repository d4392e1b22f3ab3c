package trust

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Verifier ensures no external script runs unless its current bytes match
// the manifest.
type Verifier struct {
	projectRoot string
	manifest    *Manifest
}

// NewVerifier loads and authenticates the manifest for projectRoot. The
// caller supplies key material so NewVerifier itself never touches machine
// identification — that happens once, in the CLI's bootstrap
// (cmd/cupcake), via ResolveMachineID.
func NewVerifier(projectRoot string, key []byte) (*Verifier, error) {
	m, err := Load(ManifestPath(projectRoot), key)
	if err != nil {
		return nil, err
	}
	return &Verifier{projectRoot: projectRoot, manifest: m}, nil
}

// PathTraversalError is returned when a script path, once canonicalized,
// escapes the project root.
type PathTraversalError struct {
	Path string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("trust: %s escapes the project root", e.Path)
}

// NotInManifestError is returned for a script path with no manifest entry.
type NotInManifestError struct {
	Path string
}

func (e *NotInManifestError) Error() string {
	return fmt.Sprintf("trust: %s is not in the trust manifest; run `cupcake trust init`", e.Path)
}

// HashMismatchError is returned when a script's current content does not
// match its recorded SHA-256.
type HashMismatchError struct {
	Path string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("trust: %s does not match its trusted hash", e.Path)
}

// Verify canonicalizes scriptPath against the project root, rejects path
// traversal, and compares the file's current SHA-256 against the manifest
// entry. All failure modes are fatal
// for the specific command only — the caller (internal/signal) reports the
// command as failed and the engine continues evaluation.
func (v *Verifier) Verify(scriptPath string) error {
	rel := filepath.Clean(scriptPath)

	// filepath.IsLocal rejects absolute paths and anything containing a
	// ".." component before we ever hand it to SecureJoin. SecureJoin
	// itself clamps an escaping path back inside projectRoot rather than
	// erroring, which would silently reinterpret "../../etc/passwd" as
	// some unrelated in-root path instead of refusing it outright.
	if !filepath.IsLocal(rel) {
		return &PathTraversalError{Path: scriptPath}
	}

	abs, err := securejoin.SecureJoin(v.projectRoot, rel)
	if err != nil {
		return &PathTraversalError{Path: scriptPath}
	}

	f, err := os.Open(abs)
	if err != nil {
		return fmt.Errorf("trust: opening %s: %w", scriptPath, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("trust: hashing %s: %w", scriptPath, err)
	}
	got := hex.EncodeToString(h.Sum(nil))

	want, ok := v.manifest.Entries[rel]
	if !ok {
		return &NotInManifestError{Path: scriptPath}
	}
	if got != want {
		return &HashMismatchError{Path: scriptPath}
	}
	return nil
}

// BuildManifest hashes each of the given project-relative script paths and
// returns a fresh Manifest, rejecting any path that escapes projectRoot. It
// does not walk directories; `cupcake trust init`/`trust update` pass the
// script-path commands named in the rulebook.
func BuildManifest(projectRoot string, scriptPaths []string) (*Manifest, error) {
	entries := make(map[string]string, len(scriptPaths))
	for _, rel := range scriptPaths {
		clean := filepath.Clean(rel)
		if !filepath.IsLocal(clean) {
			return nil, &PathTraversalError{Path: rel}
		}
		abs, err := securejoin.SecureJoin(projectRoot, clean)
		if err != nil {
			return nil, &PathTraversalError{Path: rel}
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("trust: reading %s: %w", rel, err)
		}
		sum := sha256.Sum256(data)
		entries[clean] = hex.EncodeToString(sum[:])
	}
	return &Manifest{Entries: entries}, nil
}
