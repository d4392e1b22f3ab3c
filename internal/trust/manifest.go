package trust

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manifest is the content-addressed record mapping script path (normalized,
// relative to project root) to the SHA-256 of its authorized bytes.
type Manifest struct {
	Entries   map[string]string `json:"entries"` // relative path -> hex sha256
	UpdatedAt time.Time         `json:"updated_at"`
}

// signedManifest is the on-disk envelope: the manifest record plus its HMAC
// tag.
type signedManifest struct {
	Manifest Manifest `json:"manifest"`
	HMAC     string   `json:"hmac"` // hex-encoded
}

// ManifestPath returns the canonical on-disk location of the trust manifest
// for a project root.
func ManifestPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".cupcake", "trust", "manifest.json")
}

// Load reads and authenticates the manifest at path using key. A hash
// mismatch on the HMAC tag means the manifest was tampered with or moved to
// a different host — both produce the same
// HMACInvalidError, deliberately not distinguishing the two causes, since an
// attacker should not learn which failure mode they triggered.
func Load(path string, key []byte) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trust: reading manifest: %w", err)
	}

	var signed signedManifest
	if err := json.Unmarshal(raw, &signed); err != nil {
		return nil, fmt.Errorf("trust: parsing manifest: %w", err)
	}

	wantTag, err := hex.DecodeString(signed.HMAC)
	if err != nil {
		return nil, &HMACInvalidError{Path: path}
	}

	canonical, err := json.Marshal(signed.Manifest)
	if err != nil {
		return nil, fmt.Errorf("trust: re-marshaling manifest for HMAC check: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(canonical)
	gotTag := mac.Sum(nil)

	if !hmac.Equal(wantTag, gotTag) {
		return nil, &HMACInvalidError{Path: path}
	}

	return &signed.Manifest, nil
}

// Save authenticates manifest with key and writes it to path, creating
// parent directories as needed.
func Save(path string, m *Manifest, key []byte) error {
	canonical, err := json.Marshal(*m)
	if err != nil {
		return fmt.Errorf("trust: marshaling manifest: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(canonical)
	tag := mac.Sum(nil)

	signed := signedManifest{Manifest: *m, HMAC: hex.EncodeToString(tag)}
	out, err := json.MarshalIndent(signed, "", "  ")
	if err != nil {
		return fmt.Errorf("trust: marshaling signed manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("trust: creating trust directory: %w", err)
	}
	return os.WriteFile(path, out, 0o600)
}

// HMACInvalidError is returned when a manifest's signature does not match
// its contents and the currently-derived host-bound key.
type HMACInvalidError struct {
	Path string
}

func (e *HMACInvalidError) Error() string {
	return fmt.Sprintf("trust: manifest at %s failed HMAC verification (tampered, or moved to a different host/project)", e.Path)
}
