// internal/logging/otel.go
package logging

import (
	"fmt"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newCore assembles the output cores selected by cfg: an encoded stderr
// sink, an OpenTelemetry bridge, or a tee of both. Stdout is never a sink;
// the stdio transport owns it for protocol frames.
func newCore(cfg *Config, provider log.LoggerProvider) (zapcore.Core, error) {
	var cores []zapcore.Core

	if cfg.Output.Stderr {
		cores = append(cores, zapcore.NewCore(
			encoderFor(cfg.Format),
			zapcore.AddSync(os.Stderr),
			cfg.Level,
		))
	}
	if cfg.Output.OTEL && provider != nil {
		cores = append(cores, otelzap.NewCore("mcpd", otelzap.WithLoggerProvider(provider)))
	}

	switch len(cores) {
	case 0:
		return nil, fmt.Errorf("no usable log output (otel requested without a provider?)")
	case 1:
		return cores[0], nil
	default:
		return zapcore.NewTee(cores...), nil
	}
}

// encoderFor returns the entry encoder for a validated format name.
func encoderFor(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == FormatConsole {
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}
