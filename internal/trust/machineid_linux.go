//go:build linux

package trust

import (
	"os"
	"strings"
)

// machineID reads the immutable host identifier from /etc/machine-id on
// Linux.
func machineID() (string, error) {
	data, err := os.ReadFile("/etc/machine-id")
	if err != nil {
		return "", &MachineIDError{Platform: "linux", Cause: err}
	}
	return strings.TrimSpace(string(data)), nil
}
