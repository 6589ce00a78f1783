package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), FileModeFile))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Gateway.Listen)
	assert.Equal(t, "barberia", cfg.Dashboard.Vertical)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.RemoteTimeout())
	assert.Zero(t, cfg.PollPeriod())
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
[remote]
base_url = "https://sheets.example/api"
api_key = "secret"
timeout_seconds = 5

[gateway]
listen = ":9000"
url = "https://gw.example"

[operator]
usuario = "marta"
negocio = "carrito-sur"

[dashboard]
vertical = "carrito"
poll_seconds = 7

[log]
level = "debug"
json = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://sheets.example/api", cfg.Remote.BaseURL)
	assert.Equal(t, "secret", cfg.Remote.APIKey)
	assert.Equal(t, 5*time.Second, cfg.RemoteTimeout())
	assert.Equal(t, ":9000", cfg.Gateway.Listen)
	assert.Equal(t, "carrito-sur", cfg.Operator.Negocio)
	assert.Equal(t, "carrito", cfg.Dashboard.Vertical)
	assert.Equal(t, 7*time.Second, cfg.PollPeriod())
	assert.True(t, cfg.Log.JSON)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[remote]
base_url = "https://file.example"
`)
	t.Setenv("TURNERO_REMOTE_BASE_URL", "https://env.example")
	t.Setenv("TURNERO_VERTICAL", "carrito")
	t.Setenv("TURNERO_POLL_SECONDS", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example", cfg.Remote.BaseURL)
	assert.Equal(t, "carrito", cfg.Dashboard.Vertical)
	assert.Equal(t, 3*time.Second, cfg.PollPeriod())
}

func TestLoad_InvalidEnvPollIgnored(t *testing.T) {
	t.Setenv("TURNERO_POLL_SECONDS", "not-a-number")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Zero(t, cfg.PollPeriod())
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, "this is not toml [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	path := writeConfig(t, `
[remote]
timeout_seconds = -1
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Remote.BaseURL = "https://sheets.example/api"
	cfg.Dashboard.Vertical = "carrito"

	require.NoError(t, Save(cfg, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://sheets.example/api", got.Remote.BaseURL)
	assert.Equal(t, "carrito", got.Dashboard.Vertical)
}
