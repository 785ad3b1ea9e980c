package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix selects which environment variables participate in the
	// merge. MCPD_MCP_SERVER_STDIO maps to mcp.server.stdio.
	EnvPrefix = "MCPD_"
)

// Load merges configuration and returns both the typed tree and the raw
// key snapshot.
//
// Precedence (highest to lowest):
//  1. Environment variables (MCPD_HTTP_ADDR, MCPD_MCP_SERVER_STDIO, ...)
//  2. Config file, YAML or TOML by extension
//  3. Built-in defaults
//
// An empty path falls back to DefaultPath; a missing file there is fine.
// An explicitly given path must exist.
func Load(path string) (*Config, *Snapshot, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, nil, err
		}
	}

	loaded := ""
	if _, err := os.Stat(path); err == nil || explicit {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, nil, err
		}

		parser, err := parserFor(path)
		if err != nil {
			return nil, nil, err
		}

		if err := k.Load(rawbytes.Provider(content), parser); err != nil {
			return nil, nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		loaded = path
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, nil, fmt.Errorf("loading environment variables: %w", err)
	}

	// Unmarshal over the defaults so absent keys keep their default values
	cfg := NewDefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	cfg.Path = loaded

	return cfg, &Snapshot{k: k}, nil
}

// DefaultPath returns the default config file location,
// ~/.config/mcpd/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "mcpd", "config.yaml"), nil
}

// readConfigFile opens the file once and validates it through the open
// descriptor to avoid a stat/read race.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("config file %s is not a regular file", path)
	}

	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return content, nil
}

// parserFor picks a koanf parser by file extension.
func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return tomlParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported config format %q (use .yaml, .yml, or .toml)", ext)
	}
}

// nestedBlocks maps environment prefixes to dotted section paths for the
// config blocks that nest below the top level. Everything else follows the
// section.field_name pattern split on the first underscore.
var nestedBlocks = map[string]string{
	"mcp_server_":         "mcp.server.",
	"logging_output_":     "logging.output.",
	"logging_caller_":     "logging.caller.",
	"logging_stacktrace_": "logging.stacktrace.",
	"logging_fields_":     "logging.fields.",
	"telemetry_sampling_": "telemetry.sampling.",
	"telemetry_metrics_":  "telemetry.metrics.",
	"telemetry_shutdown_": "telemetry.shutdown.",
}

// envTransform maps environment variable names to config keys.
//
//	MCPD_HTTP_ADDR              -> http.addr
//	MCPD_HTTP_SHUTDOWN_TIMEOUT  -> http.shutdown_timeout
//	MCPD_MCP_SERVER_STDIO       -> mcp.server.stdio
//	MCPD_TELEMETRY_SAMPLING_RATE -> telemetry.sampling.rate
func envTransform(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))

	for prefix, section := range nestedBlocks {
		if rest, ok := strings.CutPrefix(lower, prefix); ok {
			return section + rest
		}
	}

	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}
