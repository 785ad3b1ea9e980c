package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mcpd/internal/config"
	"github.com/fyrsmithlabs/mcpd/internal/daemon"
	"github.com/fyrsmithlabs/mcpd/internal/logging"
	"github.com/fyrsmithlabs/mcpd/internal/telemetry"
)

// configPath is the config file to load. Empty means the default location.
var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mcpd daemon",
	Long: `Start the MCP daemon with the transport decided by configuration.

The server speaks streamable HTTP by default. Setting mcp.server.stdio to
"true" switches it to stdio; setting mcp.server.enabled to anything but
"true" disables it entirely and serve exits cleanly without serving.

Examples:
  # Serve with the default config file (~/.config/mcpd/config.yaml)
  mcpd serve

  # Serve with an explicit config file
  mcpd serve --config /etc/mcpd/config.yaml

  # Serve over stdio
  MCPD_MCP_SERVER_STDIO=true mcpd serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "config file path (default ~/.config/mcpd/config.yaml)")
}

// runServe starts the daemon and blocks until a signal arrives or the
// transport stops on its own.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, snap, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tel, err := telemetry.New(ctx, &cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		_ = tel.Shutdown(context.Background())
	}()

	logger, err := logging.NewLogger(&cfg.Logging, tel.LoggerProvider())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info(ctx, "received signal, shutting down gracefully",
			zap.String("signal", sig.String()))
		cancel()
	}()

	logger.Info(ctx, "starting mcpd",
		zap.String("version", version),
		zap.String("commit", gitCommit),
		zap.String("config", cfg.Path))

	d, err := daemon.New(cfg, snap, logger, tel)
	if err != nil {
		return fmt.Errorf("failed to initialize daemon: %w", err)
	}

	if err := d.Run(ctx); err != nil {
		logger.Error(ctx, "daemon stopped with error", zap.Error(err))
		return err
	}

	logger.Info(ctx, "shutdown complete")
	return nil
}
