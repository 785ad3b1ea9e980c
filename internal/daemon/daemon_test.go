package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/mcpd/internal/config"
	"github.com/fyrsmithlabs/mcpd/internal/logging"
	"github.com/fyrsmithlabs/mcpd/internal/telemetry"
	"github.com/fyrsmithlabs/mcpd/pkg/hints"
)

const protocolPkg = "github.com/modelcontextprotocol/go-sdk/mcp"

func loadTestConfig(t *testing.T, content string) (*config.Config, *config.Snapshot) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, snap, err := config.Load(path)
	require.NoError(t, err)
	return cfg, snap
}

func decodeStructuredContent[T any](t *testing.T, value any) T {
	t.Helper()
	raw, err := json.Marshal(value)
	require.NoError(t, err)

	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestNewValidation(t *testing.T) {
	cfg, snap := loadTestConfig(t, "mcp:\n  server:\n    stdio: \"true\"\n")
	logger := logging.NewNop()

	_, err := New(nil, snap, logger, nil)
	require.ErrorContains(t, err, "config is required")

	_, err = New(cfg, nil, logger, nil)
	require.ErrorContains(t, err, "config snapshot is required")

	_, err = New(cfg, snap, nil, nil)
	require.ErrorContains(t, err, "logger is required")

	d, err := New(cfg, snap, logger, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, d.instanceID)
}

func TestRunDisabledServer(t *testing.T) {
	cfg, snap := loadTestConfig(t, "mcp:\n  server:\n    enabled: \"false\"\n")
	tl := logging.NewTestLogger()

	d, err := New(cfg, snap, tl.Logger, nil)
	require.NoError(t, err)

	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, TransportNone, d.transport)
	assert.Nil(t, d.hints, "disabled server must not collect metadata")
	tl.AssertLogged(t, zapcore.InfoLevel, "server disabled by configuration, nothing to serve")
}

func TestCollectMetadata(t *testing.T) {
	cfg, snap := loadTestConfig(t, "mcp:\n  server:\n    stdio: \"true\"\n")

	d, err := New(cfg, snap, logging.NewNop(), nil)
	require.NoError(t, err)

	require.NoError(t, d.collectMetadata(context.Background()))
	require.NotNil(t, d.hints)
	require.NotNil(t, d.types)
	assert.Positive(t, d.hints.Reflection().Len())
	assert.NotNil(t, d.types.Lookup(protocolPkg+".Tool"))
}

func TestDaemonServesInMemory(t *testing.T) {
	cfg, snap := loadTestConfig(t, "mcp:\n  server:\n    stdio: \"true\"\n")
	tt := telemetry.NewTestTelemetry()

	d, err := New(cfg, snap, logging.NewNop(), tt.Telemetry)
	require.NoError(t, err)

	ctx := context.Background()
	d.transport = Decide(snap)
	require.Equal(t, TransportStdio, d.transport)
	require.NoError(t, d.collectMetadata(ctx))

	srv := d.buildServer()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Run(runCtx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Run("status reports identity and type count", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "status",
			Arguments: map[string]any{},
		})
		require.NoError(t, err)
		require.False(t, res.IsError)
		require.NotEmpty(t, res.Content)

		report := decodeStructuredContent[statusOutput](t, res.StructuredContent)
		assert.Equal(t, "mcpd", report.Service)
		assert.Equal(t, "0.1.0", report.Version)
		assert.Equal(t, "stdio", report.Transport)
		assert.Equal(t, d.instanceID, report.InstanceID)
		assert.Positive(t, report.TypeCount)

		tt.AssertSpanExists(t, "tool.status")
		tt.AssertSpanAttribute(t, "tool.status", "transport", "stdio")
	})

	t.Run("type_lookup resolves a registered type", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "type_lookup",
			Arguments: map[string]any{"name": protocolPkg + ".Tool"},
		})
		require.NoError(t, err)
		require.False(t, res.IsError)

		out := decodeStructuredContent[typeLookupOutput](t, res.StructuredContent)
		assert.True(t, out.Found)
		assert.Equal(t, protocolPkg+".Tool", out.Type)
		assert.Equal(t, protocolPkg, out.Package)

		tt.AssertSpanAttribute(t, "tool.type_lookup", "type.name", protocolPkg+".Tool")
		tt.AssertSpanAttribute(t, "tool.type_lookup", "type.found", "true")
	})

	t.Run("type_lookup reports unknown types without failing", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "type_lookup",
			Arguments: map[string]any{"name": "example.com/ghost.Phantom"},
		})
		require.NoError(t, err)
		require.False(t, res.IsError)

		out := decodeStructuredContent[typeLookupOutput](t, res.StructuredContent)
		assert.False(t, out.Found)
		assert.Empty(t, out.Type)
	})

	t.Run("hints resource serves the manifest", func(t *testing.T) {
		res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: HintsResourceURI})
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		assert.Equal(t, "application/json", res.Contents[0].MIMEType)

		var manifest hints.Manifest
		require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &manifest))
		assert.Equal(t, hints.ManifestVersion, manifest.Version)
		assert.NotEmpty(t, manifest.Types)
		assert.Len(t, manifest.Types, d.hints.Reflection().Len())

		tt.AssertSpanExists(t, "resource.reflection_hints")
	})

	require.NoError(t, session.Close())
	cancel()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("server stopped with unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after context cancellation")
	}
}
