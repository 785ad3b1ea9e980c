// Package config provides configuration loading for mcpd.
//
// Configuration is merged from three layers, lowest precedence first:
// built-in defaults, a YAML or TOML config file, and MCPD_* environment
// variables. The merged result is exposed two ways: as the typed Config
// tree for operational settings, and as a raw Snapshot that preserves the
// present/absent distinction for activation keys like mcp.server.enabled.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/mcpd/internal/logging"
	"github.com/fyrsmithlabs/mcpd/internal/telemetry"
)

// ErrInvalidConfig indicates configuration that fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the complete mcpd configuration.
type Config struct {
	MCP       MCPConfig        `koanf:"mcp"`
	HTTP      HTTPConfig       `koanf:"http"`
	Logging   logging.Config   `koanf:"logging"`
	Telemetry telemetry.Config `koanf:"telemetry"`
	Watch     WatchConfig      `koanf:"watch"`

	// Path is the config file the tree was loaded from. Set by Load, empty
	// when only defaults and environment applied.
	Path string `koanf:"-"`
}

// MCPConfig holds the mcp.* block.
type MCPConfig struct {
	Server MCPServerConfig `koanf:"server"`
}

// MCPServerConfig holds the MCP server identity. The activation keys
// enabled and stdio live in the same block but are read through the raw
// Snapshot, never through this struct: activation semantics depend on
// whether a key is present at all.
type MCPServerConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
}

// HTTPConfig holds the HTTP host settings used when the server activates
// on the streamable transport.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	RateLimit       float64       `koanf:"rate_limit"` // requests/sec per client, 0 disables
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// WatchConfig controls the config file watcher.
type WatchConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Debounce time.Duration `koanf:"debounce"`
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		MCP: MCPConfig{
			Server: MCPServerConfig{
				Name:    "mcpd",
				Version: "0.1.0",
			},
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			RateLimit:       0,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging:   *logging.NewDefaultConfig(),
		Telemetry: *telemetry.NewDefaultConfig(),
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate checks the configuration for errors. All failures wrap
// ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.MCP.Server.Name == "" {
		return fmt.Errorf("%w: mcp.server.name must not be empty", ErrInvalidConfig)
	}
	if c.MCP.Server.Version == "" {
		return fmt.Errorf("%w: mcp.server.version must not be empty", ErrInvalidConfig)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("%w: http.addr must not be empty", ErrInvalidConfig)
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("%w: http.rate_limit must not be negative, got %f", ErrInvalidConfig, c.HTTP.RateLimit)
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: http.shutdown_timeout must be positive", ErrInvalidConfig)
	}
	if c.Watch.Enabled && c.Watch.Debounce <= 0 {
		return fmt.Errorf("%w: watch.debounce must be positive when watch is enabled", ErrInvalidConfig)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("%w: logging: %v", ErrInvalidConfig, err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("%w: telemetry: %v", ErrInvalidConfig, err)
	}
	return nil
}
