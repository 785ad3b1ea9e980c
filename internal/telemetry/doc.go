// Package telemetry wires mcpd into OpenTelemetry.
//
// It owns the SDK trace and metric providers, exporting over OTLP to a
// collector via gRPC by default or HTTP/protobuf when configured. An
// exporter that cannot start never stops the daemon: the instance
// degrades, Health carries the cause, and Tracer and Meter hand out the
// global no-op instruments instead.
//
// # Usage
//
//	tel, err := telemetry.New(ctx, &cfg.Telemetry)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
//	tracer := tel.Tracer("mcpd.daemon")
//	ctx, span := tracer.Start(ctx, "tool.status")
//	defer span.End()
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: "grpc"
//	  sampling:
//	    rate: 1.0
//	  metrics:
//	    enabled: true
//	    export_interval: "15s"
//
// # Testing
//
// TestTelemetry records spans and metrics in memory:
//
//	tt := telemetry.NewTestTelemetry()
//	_, span := tt.Tracer("test").Start(ctx, "work")
//	span.End()
//	tt.AssertSpanExists(t, "work")
package telemetry
