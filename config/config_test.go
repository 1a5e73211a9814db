package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp isolates godotenv from any .env in the package directory.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.Database.Driver)
	assert.Equal(t, 20*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Source.Backoff)
	assert.Equal(t, 2, cfg.Source.MaxRetries)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"json", "csv"}, cfg.Export.Formats)
}

func TestLoadConfigFileAndEnvOverrides(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
database:
  driver: MySQL
  host: db
  password: from-file
source:
  timeout: 5s
  backoff: 50ms
  max_retries: -3
  headers:
    Accept-Language: en
cache:
  size: 4
  ttl: 1m
export:
  formats: [xlsx]
  validate_schema: true
`), 0o644))

	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("FLIGHTS_PROXY_URL", "http://proxy.internal:3128")
	t.Setenv("OBJECT_STORE_ENABLED", "true")
	t.Setenv("OBJECT_STORE_BUCKET", "exports")

	require.NoError(t, LoadConfig(path))
	cfg := AppConfig
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Source.Backoff)
	assert.Equal(t, 0, cfg.Source.MaxRetries)
	assert.Equal(t, "en", cfg.Source.Headers["Accept-Language"])
	assert.Equal(t, "http://proxy.internal:3128", cfg.Source.ProxyURL)
	assert.Equal(t, 4, cfg.Cache.Size)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"xlsx"}, cfg.Export.Formats)
	assert.True(t, cfg.Export.ValidateSchema)
	assert.True(t, cfg.ObjectStore.Enabled)
	assert.Equal(t, "exports", cfg.ObjectStore.Bucket)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DB_DRIVER=sqlite\nDB_PATH=local.db\n"), 0o644))
	// godotenv never overrides variables that are already set; register cleanup for the ones it sets.
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_PATH", "")
	require.NoError(t, os.Unsetenv("DB_DRIVER"))
	require.NoError(t, os.Unsetenv("DB_PATH"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "local.db", cfg.Database.Path)
}

func TestLoadErrors(t *testing.T) {
	dir := chdirTemp(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("source:\n  timeout: soon\n"), 0o644))
	_, err = Load(bad)
	require.ErrorContains(t, err, "source timeout")

	t.Setenv("OBJECT_STORE_ENABLED", "maybe")
	_, err = Load("")
	require.ErrorContains(t, err, "OBJECT_STORE_ENABLED")
}
