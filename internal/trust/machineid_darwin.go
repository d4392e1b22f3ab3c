//go:build darwin

package trust

import (
	"fmt"
	"os/exec"
	"strings"
)

// machineID reads IOPlatformUUID via ioreg on macOS.
func machineID() (string, error) {
	out, err := exec.Command("ioreg", "-rd1", "-c", "IOPlatformExpertDevice").Output()
	if err != nil {
		return "", &MachineIDError{Platform: "darwin", Cause: err}
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, "IOPlatformUUID") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				return strings.Trim(strings.TrimSpace(parts[1]), `"`), nil
			}
		}
	}
	return "", &MachineIDError{Platform: "darwin", Cause: fmt.Errorf("IOPlatformUUID not found in ioreg output")}
}
