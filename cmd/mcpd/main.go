// Mcpd is a daemon that serves the Model Context Protocol over stdio or
// streamable HTTP.
//
// The transport is decided once at startup from the configuration file and
// environment: streamable HTTP by default, stdio when mcp.server.stdio is
// "true", and nothing at all unless mcp.server.enabled is "true" or absent.
// Before serving, the daemon collects reflection metadata for every protocol
// type it touches and exposes the result as the hints://reflection resource.
//
// Usage:
//
//	# Serve with the default config file
//	mcpd serve
//
//	# Serve over stdio for a local MCP client
//	MCPD_MCP_SERVER_STDIO=true mcpd serve
//
//	# Write the reflection hints manifest
//	mcpd hints --output hints.json
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mcpd",
	Short: "Model Context Protocol daemon",
	Long: `mcpd serves the Model Context Protocol over stdio or streamable HTTP
and ships the reflection metadata tooling for its protocol type graph.`,
	Version: version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hintsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show detailed version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mcpd by Fyrsmith Labs\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}
