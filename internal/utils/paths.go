package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// userHomeDir is replaced in tests.
var userHomeDir = os.UserHomeDir

// ResolvePath resolves path relative to baseDir. Absolute paths are returned
// unchanged, a leading "~/" is expanded to the user's home directory, and an
// empty path stays empty.
func ResolvePath(path string, baseDir string) (string, error) {
	if path == "" {
		return "", nil
	}

	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}

	if filepath.IsAbs(expanded) || baseDir == "" {
		return expanded, nil
	}
	return filepath.Join(baseDir, expanded), nil
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory for %q: %w", path, err)
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
