package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/mcpd/pkg/hints"
	"github.com/fyrsmithlabs/mcpd/pkg/schema"
)

// hintsOutput is the manifest destination. Empty means stdout.
var hintsOutput string

var hintsCmd = &cobra.Command{
	Use:   "hints",
	Short: "Write the reflection hints manifest",
	Long: `Collect reflection metadata for the protocol type graph and write the
hints manifest as JSON.

The manifest lists every type the server touches reflectively at runtime,
together with the member categories that must stay reachable. Build tooling
consumes it ahead of time; a running server serves the same document as the
hints://reflection resource.

Examples:
  # Print the manifest to stdout
  mcpd hints

  # Write the manifest to a file
  mcpd hints --output hints.json`,
	RunE: runHints,
}

func init() {
	hintsCmd.Flags().StringVarP(&hintsOutput, "output", "o", "", "write the manifest to this file instead of stdout")
}

// runHints walks the protocol type graph and writes the manifest. The walk
// fails as a whole on any unreachable type, so a written manifest is always
// complete.
func runHints(cmd *cobra.Command, args []string) error {
	h := hints.New()
	if err := schema.RegisterSchemaHints(h); err != nil {
		return fmt.Errorf("failed to collect reflection hints: %w", err)
	}

	if hintsOutput == "" {
		return h.WriteManifest(os.Stdout)
	}

	f, err := os.Create(hintsOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", hintsOutput, err)
	}
	if err := h.WriteManifest(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return f.Close()
}
