package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.False(t, cfg.Enabled) // Disabled by default for deployments without a collector
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.Equal(t, "grpc", cfg.Protocol)
	assert.Equal(t, "mcpd", cfg.ServiceName)
	assert.Equal(t, "0.1.0", cfg.ServiceVersion)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.Sampling.Rate)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Metrics.ExportInterval)
	assert.Equal(t, 5*time.Second, cfg.Shutdown.Timeout)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		cfg := NewDefaultConfig()
		cfg.Enabled = true
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "enabled defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:   "disabled config skips validation",
			mutate: func(c *Config) { *c = Config{Enabled: false} },
		},
		{
			name:    "missing endpoint",
			mutate:  func(c *Config) { c.Endpoint = "" },
			wantErr: true,
			errMsg:  "endpoint is required",
		},
		{
			name:    "missing service name",
			mutate:  func(c *Config) { c.ServiceName = "" },
			wantErr: true,
			errMsg:  "service_name is required",
		},
		{
			name:    "missing service version",
			mutate:  func(c *Config) { c.ServiceVersion = "" },
			wantErr: true,
			errMsg:  "service_version is required",
		},
		{
			name:   "empty protocol defaults to grpc",
			mutate: func(c *Config) { c.Protocol = "" },
		},
		{
			name:   "http protocol accepted",
			mutate: func(c *Config) { c.Protocol = "http/protobuf" },
		},
		{
			name:    "unknown protocol rejected",
			mutate:  func(c *Config) { c.Protocol = "thrift" },
			wantErr: true,
			errMsg:  "protocol must be",
		},
		{
			name:    "sampling rate too low",
			mutate:  func(c *Config) { c.Sampling.Rate = -0.1 },
			wantErr: true,
			errMsg:  "sampling.rate must be between 0 and 1",
		},
		{
			name:    "sampling rate too high",
			mutate:  func(c *Config) { c.Sampling.Rate = 1.1 },
			wantErr: true,
			errMsg:  "sampling.rate must be between 0 and 1",
		},
		{
			name:    "zero metrics export interval",
			mutate:  func(c *Config) { c.Metrics.ExportInterval = 0 },
			wantErr: true,
			errMsg:  "metrics.export_interval must be positive",
		},
		{
			name: "zero interval allowed when metrics disabled",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.ExportInterval = 0
			},
		},
		{
			name:    "zero shutdown timeout",
			mutate:  func(c *Config) { c.Shutdown.Timeout = 0 },
			wantErr: true,
			errMsg:  "shutdown.timeout must be positive",
		},
		{
			name: "insecure to remote endpoint rejected",
			mutate: func(c *Config) {
				c.Endpoint = "collector.prod:4317"
				c.Insecure = true
			},
			wantErr: true,
			errMsg:  "insecure connections to remote endpoints",
		},
		{
			name: "tls to remote endpoint accepted",
			mutate: func(c *Config) {
				c.Endpoint = "collector.prod:4317"
				c.Insecure = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfigLoopbackDetection(t *testing.T) {
	tests := []struct {
		endpoint string
		loopback bool
	}{
		{"localhost:4317", true},
		{"localhost", true},
		{"127.0.0.1:4317", true},
		{"127.0.0.1", true},
		{"127.0.1.1:4317", true},
		{"[::1]:4317", true},
		{"::1", true},
		{"collector.prod:4317", false},
		{"otel.example.com:4317", false},
		{"192.168.1.1:4317", false},
		{"10.0.0.1:4317", false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			cfg := &Config{Endpoint: tt.endpoint}
			assert.Equal(t, tt.loopback, cfg.isLoopback())
		})
	}
}
