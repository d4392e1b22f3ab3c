package trust

import (
	"crypto/hmac"
	"crypto/sha256"
)

// domainSeparator prefixes every HMAC key derivation.
const domainSeparator = "CUPCAKE_TRUST_V1"

// KeyMaterial is the host-bound material the HMAC key is derived from. None
// of it is persisted; it is recomputed on every run.
type KeyMaterial struct {
	MachineID      string
	ExecutablePath string
	Username       string
	ProjectRoot    string
}

// DeriveKey computes HMAC-SHA256(domain_separator || machine_id ||
// executable_path || username || project_root, project_root): the key
// material is the message, and the project root itself is the HMAC key,
// binding the manifest to both host and project.
func DeriveKey(km KeyMaterial) []byte {
	mac := hmac.New(sha256.New, []byte(km.ProjectRoot))
	mac.Write([]byte(domainSeparator))
	mac.Write([]byte(km.MachineID))
	mac.Write([]byte(km.ExecutablePath))
	mac.Write([]byte(km.Username))
	mac.Write([]byte(km.ProjectRoot))
	return mac.Sum(nil)
}
