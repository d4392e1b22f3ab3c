package trust

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(projectRoot string) []byte {
	return DeriveKey(KeyMaterial{
		MachineID:      "fixture-machine",
		ExecutablePath: "/usr/local/bin/cupcake",
		Username:       "alice",
		ProjectRoot:    projectRoot,
	})
}

func TestManifestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	key := testKey(dir)

	m := &Manifest{Entries: map[string]string{
		".cupcake/signals/fetch_diff.sh": "abc123",
	}}
	path := ManifestPath(dir)
	require.NoError(t, Save(path, m, key))

	loaded, err := Load(path, key)
	require.NoError(t, err)
	assert.Equal(t, m.Entries, loaded.Entries)
}

func TestLoadRejectsWrongKey(t *testing.T) {
	dir := t.TempDir()
	m := &Manifest{Entries: map[string]string{"a.sh": "deadbeef"}}
	path := ManifestPath(dir)
	require.NoError(t, Save(path, m, testKey(dir)))

	// Different project root derives a different key - simulates the
	// manifest being copied onto a different host or project.
	_, err := Load(path, testKey(dir+"-other"))
	require.Error(t, err)
	var hmacErr *HMACInvalidError
	assert.ErrorAs(t, err, &hmacErr)
}

func TestLoadRejectsTamperedContents(t *testing.T) {
	dir := t.TempDir()
	key := testKey(dir)
	m := &Manifest{Entries: map[string]string{"a.sh": "deadbeef"}}
	path := ManifestPath(dir)
	require.NoError(t, Save(path, m, key))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	tampered := []byte(string(raw)[:len(raw)-2] + "}}")
	require.NoError(t, os.WriteFile(path, tampered, 0o600))

	_, err = Load(path, key)
	require.Error(t, err)
}

func TestVerifierDetectsBitFlip(t *testing.T) {
	dir := t.TempDir()
	scriptsDir := filepath.Join(dir, ".cupcake", "signals")
	require.NoError(t, os.MkdirAll(scriptsDir, 0o755))
	scriptPath := filepath.Join(scriptsDir, "check.sh")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/bin/sh\necho ok\n"), 0o755))

	rel := ".cupcake/signals/check.sh"
	m, err := BuildManifest(dir, []string{rel})
	require.NoError(t, err)

	key := testKey(dir)
	require.NoError(t, Save(ManifestPath(dir), m, key))

	v, err := NewVerifier(dir, key)
	require.NoError(t, err)
	assert.NoError(t, v.Verify(rel))

	// Flip a bit in the trusted script.
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/bin/sh\necho pwned\n"), 0o755))
	v, err = NewVerifier(dir, key)
	require.NoError(t, err)

	err = v.Verify(rel)
	require.Error(t, err)
	var mismatch *HashMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestVerifierRejectsUnknownPath(t *testing.T) {
	dir := t.TempDir()
	m := &Manifest{Entries: map[string]string{}}
	key := testKey(dir)
	require.NoError(t, Save(ManifestPath(dir), m, key))

	v, err := NewVerifier(dir, key)
	require.NoError(t, err)

	err = v.Verify(".cupcake/signals/never_declared.sh")
	require.Error(t, err)
	var notInManifest *NotInManifestError
	assert.ErrorAs(t, err, &notInManifest)
}

func TestVerifierRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	m := &Manifest{Entries: map[string]string{}}
	key := testKey(dir)
	require.NoError(t, Save(ManifestPath(dir), m, key))

	v, err := NewVerifier(dir, key)
	require.NoError(t, err)

	err = v.Verify("../../etc/passwd")
	require.Error(t, err)
	var traversal *PathTraversalError
	assert.ErrorAs(t, err, &traversal)
}
