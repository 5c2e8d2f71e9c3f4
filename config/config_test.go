package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  dsn: "file::memory:"
jwt:
  secret: s3cret
`)
	t.Setenv("LINKRANK_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	// defaults
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 3*time.Second, cfg.Database.OpTimeout)
	assert.Equal(t, 30*time.Second, cfg.Redis.FeedTTL)
	assert.False(t, cfg.Reconcile.Enabled)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: from-file
`)
	t.Setenv("LINKRANK_CONFIG", path)
	t.Setenv("LINKRANK_JWT_SECRET", "from-env")
	t.Setenv("LINKRANK_JWT_TTL", "2h")
	t.Setenv("LINKRANK_REDIS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: mysql
`)
	t.Setenv("LINKRANK_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}
