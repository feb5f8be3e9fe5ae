// Package secrets loads API keys from well-known files under the user's home
// directory.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Hooks for tests.
var (
	keyReadFile    = os.ReadFile
	keyUserHomeDir = os.UserHomeDir
)

// ConfigurationError is returned when a required key is missing or empty.
type ConfigurationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("API key %s at %s: %v", e.Reason, e.Path, e.Err)
	}
	return fmt.Sprintf("API key %s at %s", e.Reason, e.Path)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// DefaultKeyPath returns the key file location for a provider, relative to
// the user's home directory: ~/.openai/key, ~/.anthropic/key, and so on.
func DefaultKeyPath(provider string) (string, error) {
	home, err := keyUserHomeDir()
	if err != nil {
		return "", &ConfigurationError{Path: "~/." + provider + "/key", Reason: "location unavailable", Err: err}
	}
	return filepath.Join(home, "."+provider, "key"), nil
}

// LoadKey reads and trims the key stored at path.
func LoadKey(path string) (string, error) {
	data, err := keyReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &ConfigurationError{Path: path, Reason: "file not found"}
		}
		return "", &ConfigurationError{Path: path, Reason: "file unreadable", Err: err}
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", &ConfigurationError{Path: path, Reason: "file is empty"}
	}
	return key, nil
}

// LoadProviderKey reads the key for provider from keyPath, or from the
// provider's default location when keyPath is empty.
func LoadProviderKey(provider, keyPath string) (string, error) {
	if keyPath == "" {
		p, err := DefaultKeyPath(provider)
		if err != nil {
			return "", err
		}
		keyPath = p
	}
	return LoadKey(keyPath)
}
