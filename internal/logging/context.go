// internal/logging/context.go
package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKeyRequestID struct{}
type ctxKeyLogger struct{}

// ContextFields renders the correlation data carried by ctx as zap fields.
// An active sampled span contributes trace_id, span_id and trace_sampled;
// an attached request ID contributes request.id. Returns nil when ctx
// carries nothing.
func ContextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}

	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request.id", id))
	}

	return fields
}

// WithRequestID attaches a request ID to ctx. An empty ID leaves ctx
// unchanged.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyRequestID{}, id)
}

// RequestIDFromContext returns the attached request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return id
}

// WithLogger attaches a logger to ctx for retrieval with FromContext.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger{}, logger)
}

// FromContext returns the attached logger, or a no-op logger when none
// was attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKeyLogger{}).(*Logger); ok {
		return l
	}
	return NewNop()
}
