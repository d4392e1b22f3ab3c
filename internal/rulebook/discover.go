package rulebook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// signalScriptsDir and actionScriptsDir are the fixed, project-relative
// locations auto-discovered scripts are expected to live under.
const (
	signalScriptsDir = ".cupcake/signals"
	actionScriptsDir = ".cupcake/actions"
)

// DiscoverScripts walks signalScriptsDir and actionScriptsDir under
// projectRoot and returns every regular file found, relative to
// projectRoot, suitable for building or updating a trust manifest. A
// missing directory is not an error — discovery is opportunistic.
func DiscoverScripts(projectRoot string) ([]string, error) {
	var found []string
	for _, dir := range []string{signalScriptsDir, actionScriptsDir} {
		rel, err := walkScripts(projectRoot, dir)
		if err != nil {
			return nil, err
		}
		found = append(found, rel...)
	}
	return found, nil
}

func walkScripts(projectRoot, relDir string) ([]string, error) {
	absDir := filepath.Join(projectRoot, relDir)
	entries, err := os.ReadDir(absDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rulebook: listing %s: %w", relDir, err)
	}

	var found []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		found = append(found, filepath.Join(relDir, entry.Name()))
	}
	return found, nil
}
