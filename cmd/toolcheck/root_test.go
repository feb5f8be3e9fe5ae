package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TOOLCHECK_TEST_FROM_DOTENV=yes\nTOOLCHECK_TEST_PRESET=dotenv\n"), 0o644))

	t.Setenv("TOOLCHECK_TEST_PRESET", "shell")
	t.Setenv("TOOLCHECK_TEST_FROM_DOTENV", "")
	require.NoError(t, os.Unsetenv("TOOLCHECK_TEST_FROM_DOTENV"))

	require.NoError(t, loadDotEnv(path))

	assert.Equal(t, "yes", os.Getenv("TOOLCHECK_TEST_FROM_DOTENV"))
	assert.Equal(t, "shell", os.Getenv("TOOLCHECK_TEST_PRESET"), "existing variables win")
}

func TestLoadDotEnv_Missing(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestSetupTracing_DisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")

	shutdown, err := setupTracing(t.Context())
	require.NoError(t, err)
	assert.Nil(t, shutdown)
}

func TestRootCommand_Version(t *testing.T) {
	out, err := runRoot(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "toolcheck version dev")
}
