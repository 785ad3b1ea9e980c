// Package daemon assembles and runs the mcpd server.
//
// The daemon decides the transport once at startup by evaluating the
// activation conditions against the raw configuration snapshot, collects
// reflection metadata for the protocol type graph, and serves MCP over
// stdio or streamable HTTP until shutdown. A disabled server is a clean
// no-op, not an error.
package daemon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/viant/x"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mcpd/internal/config"
	"github.com/fyrsmithlabs/mcpd/internal/logging"
	"github.com/fyrsmithlabs/mcpd/internal/server"
	"github.com/fyrsmithlabs/mcpd/internal/telemetry"
	"github.com/fyrsmithlabs/mcpd/pkg/hints"
	"github.com/fyrsmithlabs/mcpd/pkg/schema"
)

// HintsResourceURI is the MCP resource exposing the reflection hints
// manifest.
const HintsResourceURI = "hints://reflection"

// Daemon ties configuration, metadata collection, and transport together.
// Create with New, then Run once; the transport decision holds for the
// lifetime of the process.
type Daemon struct {
	cfg      *config.Config
	snapshot *config.Snapshot
	logger   *logging.Logger
	tel      *telemetry.Telemetry
	tracer   trace.Tracer
	metrics  *Metrics

	instanceID string
	startedAt  time.Time
	transport  Transport

	hints *hints.Hints
	types *x.Registry
}

// New creates a daemon from loaded configuration. tel may be nil when
// telemetry is disabled.
func New(cfg *config.Config, snap *config.Snapshot, logger *logging.Logger, tel *telemetry.Telemetry) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if snap == nil {
		return nil, fmt.Errorf("config snapshot is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Daemon{
		cfg:        cfg,
		snapshot:   snap,
		logger:     logger.Named("daemon"),
		tel:        tel,
		tracer:     tel.Tracer("mcpd.daemon"),
		metrics:    NewMetrics(),
		instanceID: uuid.NewString(),
		startedAt:  time.Now(),
	}, nil
}

// Run decides the transport and serves until ctx is canceled. When the
// configuration disables the server it logs the decision and returns nil.
func (d *Daemon) Run(ctx context.Context) error {
	d.transport = Decide(d.snapshot)
	d.metrics.RecordActivation(d.transport.String())
	d.logger.Info(ctx, "transport selected",
		zap.String("transport", d.transport.String()),
		zap.String("instance_id", d.instanceID))

	if d.transport == TransportNone {
		d.logger.Info(ctx, "server disabled by configuration, nothing to serve")
		return nil
	}

	if err := d.collectMetadata(ctx); err != nil {
		return err
	}

	srv := d.buildServer()

	if d.cfg.Watch.Enabled && d.cfg.Path != "" {
		if err := d.watchConfig(ctx, d.cfg.Path); err != nil {
			d.logger.Warn(ctx, "config watcher failed to start", zap.Error(err))
		}
	}

	if d.transport == TransportStdio {
		return d.runStdio(ctx, srv)
	}
	return d.runHTTP(ctx, srv)
}

// collectMetadata walks the protocol type graph once and registers every
// reachable type with the hints container and the runtime type registry.
// A failed walk aborts startup: partially registered metadata would
// otherwise surface as encode errors on the first request.
func (d *Daemon) collectMetadata(ctx context.Context) error {
	h := hints.New()
	if err := schema.RegisterSchemaHints(h); err != nil {
		return fmt.Errorf("collecting reflection hints: %w", err)
	}

	reg := x.NewRegistry()
	if err := schema.RegisterSchemaTypes(reg); err != nil {
		return fmt.Errorf("registering protocol types: %w", err)
	}

	d.hints = h
	d.types = reg
	d.metrics.SetRegisteredTypes(h.Reflection().Len())
	d.logger.Info(ctx, "protocol metadata collected",
		zap.Int("types", h.Reflection().Len()))
	return nil
}

// buildServer assembles the MCP server with the daemon's tools and
// resources registered.
func (d *Daemon) buildServer() *mcp.Server {
	srv := mcp.NewServer(
		&mcp.Implementation{
			Name:    d.cfg.MCP.Server.Name,
			Version: d.cfg.MCP.Server.Version,
		},
		nil,
	)

	d.registerStatusTool(srv)
	d.registerTypeLookupTool(srv)
	d.registerHintsResource(srv)

	return srv
}

// statusInput is empty because the status tool takes no arguments.
type statusInput struct{}

type statusOutput struct {
	Service       string  `json:"service" jsonschema:"Server implementation name"`
	Version       string  `json:"version" jsonschema:"Server version"`
	InstanceID    string  `json:"instance_id" jsonschema:"Unique ID of this daemon instance"`
	Transport     string  `json:"transport" jsonschema:"Transport selected at startup"`
	UptimeSeconds float64 `json:"uptime_seconds" jsonschema:"Seconds since the daemon started"`
	TypeCount     int     `json:"type_count" jsonschema:"Number of protocol types registered for reflective access"`
}

func (d *Daemon) registerStatusTool(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "status",
		Description: "Report daemon identity, selected transport, uptime, and the number of protocol types registered for reflective access.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args statusInput) (*mcp.CallToolResult, statusOutput, error) {
		_, span := d.tracer.Start(ctx, "tool.status",
			trace.WithAttributes(attribute.String("transport", d.transport.String())),
		)
		defer span.End()
		d.metrics.RecordToolCall("status")

		output := statusOutput{
			Service:       d.cfg.MCP.Server.Name,
			Version:       d.cfg.MCP.Server.Version,
			InstanceID:    d.instanceID,
			Transport:     d.transport.String(),
			UptimeSeconds: time.Since(d.startedAt).Seconds(),
			TypeCount:     d.hints.Reflection().Len(),
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf(
					"%s %s serving on %s, %d types registered.",
					output.Service, output.Version, output.Transport, output.TypeCount,
				)},
			},
		}, output, nil
	})
}

type typeLookupInput struct {
	Name string `json:"name" jsonschema:"required,Package-qualified type name to resolve, e.g. the type field of a hints manifest entry"`
}

type typeLookupOutput struct {
	Found   bool   `json:"found" jsonschema:"Whether the type is registered"`
	Type    string `json:"type,omitempty" jsonschema:"Registry key of the resolved type"`
	Package string `json:"package,omitempty" jsonschema:"Package path of the resolved type"`
}

func (d *Daemon) registerTypeLookupTool(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "type_lookup",
		Description: "Resolve a package-qualified type name against the runtime type registry. Entries of the hints://reflection manifest resolve by their type field.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args typeLookupInput) (*mcp.CallToolResult, typeLookupOutput, error) {
		_, span := d.tracer.Start(ctx, "tool.type_lookup",
			trace.WithAttributes(attribute.String("type.name", args.Name)),
		)
		defer span.End()
		d.metrics.RecordToolCall("type_lookup")

		if args.Name == "" {
			return nil, typeLookupOutput{}, fmt.Errorf("name is required")
		}

		t := d.types.Lookup(args.Name)
		span.SetAttributes(attribute.Bool("type.found", t != nil))
		if t == nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					&mcp.TextContent{Text: fmt.Sprintf("Type %s is not registered.", args.Name)},
				},
			}, typeLookupOutput{Found: false}, nil
		}

		output := typeLookupOutput{
			Found:   true,
			Type:    t.Key(),
			Package: t.PkgPath,
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Type %s is registered.", t.Key())},
			},
		}, output, nil
	})
}

func (d *Daemon) registerHintsResource(srv *mcp.Server) {
	srv.AddResource(&mcp.Resource{
		Name:        "reflection_hints",
		Description: "Reflection hints manifest covering every protocol type the server touches reflectively",
		MIMEType:    "application/json",
		URI:         HintsResourceURI,
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_, span := d.tracer.Start(ctx, "resource.reflection_hints")
		defer span.End()
		d.metrics.RecordResourceRead(HintsResourceURI)

		var buf bytes.Buffer
		if err := d.hints.WriteManifest(&buf); err != nil {
			return nil, fmt.Errorf("rendering hints manifest: %w", err)
		}
		span.SetAttributes(attribute.Int("manifest.bytes", buf.Len()))

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      req.Params.URI,
					MIMEType: "application/json",
					Text:     buf.String(),
				},
			},
		}, nil
	})
}

// watchConfig watches the config file and reports divergence between the
// file and the running transport decision. The decision itself never
// changes after startup; a restart applies the new file.
func (d *Daemon) watchConfig(ctx context.Context, path string) error {
	w, err := config.NewWatcher(path, d.cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}

	d.logger.Info(ctx, "watching config file", zap.String("path", path))

	go func() {
		defer w.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events():
				if !ok {
					return
				}
				if ev.Err != nil {
					d.logger.Error(ctx, "config reload failed",
						zap.String("path", ev.Path), zap.Error(ev.Err))
					continue
				}
				next := Decide(ev.Snapshot)
				if next != d.transport {
					d.logger.Warn(ctx, "config file diverged from running transport, restart to apply",
						zap.String("running", d.transport.String()),
						zap.String("configured", next.String()))
				}
			}
		}
	}()

	return nil
}

// runStdio serves MCP frames on stdin and stdout until ctx is canceled.
// Context cancellation is a clean shutdown, not an error.
func (d *Daemon) runStdio(ctx context.Context, srv *mcp.Server) error {
	d.logger.Info(ctx, "starting MCP server on stdio transport")
	err := srv.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

// runHTTP serves MCP over the streamable HTTP transport behind the HTTP
// host, which also exposes /health and /metrics.
func (d *Daemon) runHTTP(ctx context.Context, srv *mcp.Server) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return srv }, nil)
	host := server.New(d.cfg.HTTP, d.cfg.MCP.Server.Name, handler, d.logger)

	d.logger.Info(ctx, "starting MCP server on streamable HTTP transport",
		zap.String("addr", d.cfg.HTTP.Addr))

	err := host.Start(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
