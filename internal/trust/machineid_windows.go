//go:build windows

package trust

import (
	"fmt"
	"os/exec"
	"strings"
)

// machineID reads the system product UUID via wmic on Windows.
func machineID() (string, error) {
	out, err := exec.Command("wmic", "csproduct", "get", "UUID").Output()
	if err != nil {
		return "", &MachineIDError{Platform: "windows", Cause: err}
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) < 2 {
		return "", &MachineIDError{Platform: "windows", Cause: fmt.Errorf("unexpected wmic output")}
	}
	return strings.TrimSpace(lines[1]), nil
}
