package httpmux

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "httpmux.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, DefaultIdleTimeout, cfg.IdleTimeout())
	require.Equal(t, 10*time.Second, cfg.DialTimeout())
	require.Zero(t, cfg.MaxBufferBytes)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := writeConfig(t, `
idle_timeout_seconds: 30
dial_timeout_seconds: 5
max_buffer_bytes: 1048576
logging:
  level: debug
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.IdleTimeout())
	require.Equal(t, 5*time.Second, cfg.DialTimeout())
	require.Equal(t, 1<<20, cfg.MaxBufferBytes)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "idle_timeout_seconds: -1\n"))
	require.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "max_buffer_bytes: -5\n"))
	require.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "idle_timeout_seconds: [\n"))
	require.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
