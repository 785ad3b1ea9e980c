package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// writeConfig writes content to dir/name and returns the full path.
func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDefaultsOnly(t *testing.T) {
	// Isolate from any real ~/.config/mcpd/config.yaml
	t.Setenv("HOME", t.TempDir())

	cfg, snap, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mcpd", cfg.MCP.Server.Name)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Empty(t, cfg.Path)

	// Defaults alone contribute no raw keys
	_, ok := snap.Lookup("mcp.server.enabled")
	assert.False(t, ok)
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	yamlContent := `mcp:
  server:
    enabled: true
    stdio: false
    name: docsmith
    version: 1.2.3

http:
  addr: 127.0.0.1:9010
  rate_limit: 25
  shutdown_timeout: 3s

logging:
  level: debug
  format: console

watch:
  enabled: true
  debounce: 50ms
`
	path := writeConfig(t, t.TempDir(), "config.yaml", yamlContent)

	cfg, snap, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "docsmith", cfg.MCP.Server.Name)
	assert.Equal(t, "1.2.3", cfg.MCP.Server.Version)
	assert.Equal(t, "127.0.0.1:9010", cfg.HTTP.Addr)
	assert.Equal(t, float64(25), cfg.HTTP.RateLimit)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, zapcore.DebugLevel, cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, path, cfg.Path)

	// Unset blocks keep their defaults
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)

	// The snapshot renders YAML booleans as strings
	v, ok := snap.Lookup("mcp.server.enabled")
	require.True(t, ok)
	assert.Equal(t, "true", v)

	v, ok = snap.Lookup("mcp.server.stdio")
	require.True(t, ok)
	assert.Equal(t, "false", v)

	_, ok = snap.Lookup("mcp.server.nonexistent")
	assert.False(t, ok)
}

func TestLoadTOML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tomlContent := `[mcp.server]
enabled = "true"
stdio = true
name = "tomld"
version = "2.0.0"

[http]
addr = "127.0.0.1:9020"
shutdown_timeout = "5s"
`
	path := writeConfig(t, t.TempDir(), "config.toml", tomlContent)

	cfg, snap, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tomld", cfg.MCP.Server.Name)
	assert.Equal(t, "127.0.0.1:9020", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)

	// TOML string and bool values both render through the snapshot
	v, ok := snap.Lookup("mcp.server.enabled")
	require.True(t, ok)
	assert.Equal(t, "true", v)

	v, ok = snap.Lookup("mcp.server.stdio")
	require.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	yamlContent := `mcp:
  server:
    stdio: false

http:
  addr: 127.0.0.1:9010
`
	path := writeConfig(t, t.TempDir(), "config.yaml", yamlContent)

	t.Setenv("MCPD_HTTP_ADDR", "127.0.0.1:7777")
	t.Setenv("MCPD_MCP_SERVER_STDIO", "true")

	cfg, snap, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7777", cfg.HTTP.Addr)

	v, ok := snap.Lookup("mcp.server.stdio")
	require.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestLoadEnvironmentOnly(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MCPD_MCP_SERVER_ENABLED", "false")
	t.Setenv("MCPD_LOGGING_LEVEL", "debug")

	cfg, snap, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, zapcore.DebugLevel, cfg.Logging.Level)

	v, ok := snap.Lookup("mcp.server.enabled")
	require.True(t, ok)
	assert.Equal(t, "false", v)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening config file")
}

func TestLoadUnsupportedExtension(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, t.TempDir(), "config.json", `{}`)

	_, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoadOversizedFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	content := append([]byte("# big\n"), bytes.Repeat([]byte("#"), maxConfigFileSize)...)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, content, 0600))

	_, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file too large")
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, t.TempDir(), "config.yaml", "http:\n  addr: [unclosed\n")

	_, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoadValidationFailure(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, t.TempDir(), "config.yaml", "http:\n  addr: \"\"\n")

	_, _, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MCPD_HTTP_ADDR", "http.addr"},
		{"MCPD_HTTP_RATE_LIMIT", "http.rate_limit"},
		{"MCPD_HTTP_SHUTDOWN_TIMEOUT", "http.shutdown_timeout"},
		{"MCPD_MCP_SERVER_ENABLED", "mcp.server.enabled"},
		{"MCPD_MCP_SERVER_STDIO", "mcp.server.stdio"},
		{"MCPD_MCP_SERVER_NAME", "mcp.server.name"},
		{"MCPD_LOGGING_LEVEL", "logging.level"},
		{"MCPD_LOGGING_OUTPUT_OTEL", "logging.output.otel"},
		{"MCPD_LOGGING_FIELDS_COMPONENT", "logging.fields.component"},
		{"MCPD_TELEMETRY_ENDPOINT", "telemetry.endpoint"},
		{"MCPD_TELEMETRY_SERVICE_NAME", "telemetry.service_name"},
		{"MCPD_TELEMETRY_SAMPLING_RATE", "telemetry.sampling.rate"},
		{"MCPD_TELEMETRY_METRICS_ENABLED", "telemetry.metrics.enabled"},
		{"MCPD_WATCH_ENABLED", "watch.enabled"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, envTransform(tt.in))
		})
	}
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "mcpd", "config.yaml"), path)
}

func TestTomlParser(t *testing.T) {
	p := tomlParser{}

	m, err := p.Unmarshal([]byte("[mcp.server]\nstdio = false\n"))
	require.NoError(t, err)

	mcp, ok := m["mcp"].(map[string]interface{})
	require.True(t, ok)
	server, ok := mcp["server"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, server["stdio"])

	out, err := p.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), "stdio = false")
}
