package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "ribbon.db", cfg.DSN)
	assert.Equal(t, "cli", cfg.Author)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("RIBBON_DSN", "postgres://example/ribbon")
	t.Setenv("RIBBON_AUTHOR", "ada")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://example/ribbon", cfg.DSN)
	assert.Equal(t, "ada", cfg.Author)
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, writeFile(envFile, "RIBBON_DSN=sqlite://from-file.db\n"))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "sqlite://from-file.db", cfg.DSN)
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
