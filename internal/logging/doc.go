// Package logging provides structured logging for mcpd.
//
// It wraps zap with a Trace level below Debug for protocol frame
// logging, correlation fields pulled from the context (trace_id,
// span_id, request.id), and a choice of sinks: encoded stderr, the
// OpenTelemetry log bridge, or both. Stdout is off limits because the
// stdio transport serializes JSON-RPC frames there.
//
// # Usage
//
// Build a logger from config, typically with the telemetry provider:
//
//	logger, err := logging.NewLogger(&cfg.Logging, tel.LoggerProvider())
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
// Every log call takes a context so correlation fields ride along:
//
//	ctx = logging.WithRequestID(ctx, "req_42")
//	logger.Info(ctx, "transport selected", zap.String("transport", "stdio"))
//
// which renders as:
//
//	{"ts":"2026-08-21T10:15:30Z","level":"info","msg":"transport selected","request.id":"req_42","transport":"stdio"}
package logging
