package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hello.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.True(t, cfg.CSRF.Enabled)
	assert.Equal(t, time.Hour, cfg.CSRF.MaxAge)
	assert.Equal(t, "csrf_token", cfg.CSRF.FieldName)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
server:
  host: 127.0.0.1
  port: 9000
  shutdown_timeout: 2s
log:
  level: debug
  format: json
csrf:
  secure: true
  trusted_origins: [example.com]
metrics:
  addr: ":2112"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.CSRF.Secure)
	assert.Equal(t, []string{"example.com"}, cfg.CSRF.TrustedOrigins)
	assert.Equal(t, ":2112", cfg.Metrics.Addr)
	// Untouched keys keep their defaults.
	assert.True(t, cfg.CSRF.Enabled)
	assert.Equal(t, "X-CSRFToken", cfg.CSRF.HeaderName)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "server:\n  port: 9000\n")
	t.Setenv("HELLO_PORT", "9100")
	t.Setenv("HELLO_CSRF_ENABLED", "false")
	t.Setenv("HELLO_CSRF_TRUSTED_ORIGINS", "a.example, b.example")
	t.Setenv("HELLO_REDIS_DB", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.False(t, cfg.CSRF.Enabled)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, []string{"a.example", "b.example"}, cfg.CSRF.TrimmedOrigins())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeFile(t, "server:\n  prot: 1\n"))
		assert.Error(t, err)
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("HELLO_PORT", "70000")
		_, err := Load("")
		assert.ErrorIs(t, err, ErrInvalidPort)
	})

	t.Run("bad level", func(t *testing.T) {
		t.Setenv("HELLO_LOG_LEVEL", "chatty")
		_, err := Load("")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("bad format", func(t *testing.T) {
		t.Setenv("HELLO_LOG_FORMAT", "xml")
		_, err := Load("")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestValidate_CSRFMaxAge(t *testing.T) {
	cfg := Default()
	cfg.CSRF.MaxAge = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.CSRF.Enabled = false
	assert.NoError(t, cfg.Validate())
}
