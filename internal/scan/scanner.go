package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveRoot converts path (including . and ~) to an absolute directory path
// and verifies that it is a directory
func ResolveRoot(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no target directory given")
	}

	// Expand home directory
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", absPath)
	}

	return absPath, nil
}
