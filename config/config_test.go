package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadFrom_RepoConfigLocal(t *testing.T) {
	cfg, err := LoadFrom("local", ".")
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "local-dev-secret", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "file", cfg.Notes.Backend)
	assert.Equal(t, "data/notes", cfg.Notes.Dir)
	assert.Equal(t, 10*time.Second, cfg.Notes.DedupTTL)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadFrom_DefaultsAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "jwt:\n  secret: ${SITECHAT_TEST_SECRET}\n")

	t.Setenv("SITECHAT_TEST_SECRET", "from-env")
	t.Setenv("NOTES_DIR", "/var/lib/sitechat/notes")
	t.Setenv("SERVER_PORT", ":8080")
	t.Setenv("SESSION_TTL", "2h")

	cfg, err := LoadFrom("missing-env", dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "/var/lib/sitechat/notes", cfg.Notes.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "reports", cfg.Report.Dir)
	assert.Equal(t, "static", cfg.Static.Dir)
}

func TestLoadFrom_Validation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "jwt:\n  secret: s\nnotes:\n  backend: sqlite\n")

	_, err := LoadFrom("", dir)
	assert.ErrorContains(t, err, "unknown notes backend")

	writeFile(t, dir, "base.yaml", "notes:\n  backend: file\n")
	t.Setenv("JWT_SECRET", "")
	_, err = LoadFrom("", dir)
	assert.ErrorContains(t, err, "jwt.secret")
}

func TestLoadFrom_UnknownField(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "jwt:\n  secret: s\nnotes:\n  folder: x\n")

	_, err := LoadFrom("", dir)
	assert.Error(t, err)
}
