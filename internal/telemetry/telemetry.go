package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Telemetry owns the SDK trace and metric providers and their shutdown.
//
// Exporter trouble never takes the daemon down with it. A provider that
// fails to initialize leaves the instance degraded with the cause
// recorded, and instrument requests fall through to the global no-op
// providers.
type Telemetry struct {
	config *Config

	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	logProvider    log.LoggerProvider

	healthy  atomic.Bool
	degraded atomic.Bool
	reason   atomic.Value // string
}

// New validates cfg and brings up the providers it enables. A disabled
// config yields a working no-op instance, and exporter failures degrade
// rather than error; only an invalid config fails construction.
func New(ctx context.Context, cfg *Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	t := &Telemetry{config: cfg}
	t.healthy.Store(true)

	if cfg.Enabled {
		t.bootstrap(ctx)
	}
	return t, nil
}

// bootstrap stands up the providers and installs them globally, along
// with W3C trace context propagation. Each provider degrades on its own;
// a dead trace exporter does not cost us metrics.
func (t *Telemetry) bootstrap(ctx context.Context) {
	res := newResource(t.config)

	if tp, err := newTracerProvider(ctx, t.config, res); err != nil {
		t.setDegraded("tracer provider", err)
	} else {
		t.tracerProvider = tp
		otel.SetTracerProvider(tp)
	}

	if mp, err := newMeterProvider(ctx, t.config, res); err != nil {
		t.setDegraded("meter provider", err)
	} else if mp != nil {
		t.meterProvider = mp
		otel.SetMeterProvider(mp)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Tracer returns a tracer for the given instrumentation scope, falling
// back to the global no-op provider when disabled or degraded.
func (t *Telemetry) Tracer(name string, opts ...oteltrace.TracerOption) oteltrace.Tracer {
	if t == nil || t.tracerProvider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return t.tracerProvider.Tracer(name, opts...)
}

// Meter returns a meter for the given instrumentation scope, falling
// back to the global no-op provider when disabled or degraded.
func (t *Telemetry) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if t == nil || t.meterProvider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return t.meterProvider.Meter(name, opts...)
}

// LoggerProvider returns the provider wired into the zap OTEL bridge,
// or nil when none has been set.
func (t *Telemetry) LoggerProvider() log.LoggerProvider {
	if t == nil {
		return nil
	}
	return t.logProvider
}

// SetLoggerProvider hands the log provider to the zap OTEL bridge.
func (t *Telemetry) SetLoggerProvider(lp log.LoggerProvider) {
	if t != nil {
		t.logProvider = lp
	}
}

// sdkProvider is the lifecycle shared by the trace and metric providers.
type sdkProvider interface {
	Shutdown(context.Context) error
	ForceFlush(context.Context) error
}

type namedProvider struct {
	name string
	sdk  sdkProvider
}

// active lists the providers that actually initialized, named for error
// messages.
func (t *Telemetry) active() []namedProvider {
	var ps []namedProvider
	if t.tracerProvider != nil {
		ps = append(ps, namedProvider{"trace", t.tracerProvider})
	}
	if t.meterProvider != nil {
		ps = append(ps, namedProvider{"meter", t.meterProvider})
	}
	return ps
}

// Shutdown drains and stops every active provider. When ctx carries no
// deadline the configured shutdown timeout applies.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok && t.config != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Shutdown.Timeout)
		defer cancel()
	}

	var errs []error
	for _, p := range t.active() {
		if err := p.sdk.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s provider shutdown: %w", p.name, err))
		}
	}

	t.healthy.Store(false)
	return errors.Join(errs...)
}

// ForceFlush exports pending telemetry immediately.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var errs []error
	for _, p := range t.active() {
		if err := p.sdk.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s flush: %w", p.name, err))
		}
	}
	return errors.Join(errs...)
}

// HealthStatus reports provider health. Reason holds the most recent
// degradation cause, empty when not degraded.
type HealthStatus struct {
	Healthy  bool
	Degraded bool
	Reason   string
}

// Health returns the current telemetry health status.
func (t *Telemetry) Health() HealthStatus {
	if t == nil {
		return HealthStatus{Healthy: false, Degraded: true}
	}
	reason, _ := t.reason.Load().(string)
	return HealthStatus{
		Healthy:  t.healthy.Load(),
		Degraded: t.degraded.Load(),
		Reason:   reason,
	}
}

// IsEnabled returns true while telemetry is enabled and not shut down.
func (t *Telemetry) IsEnabled() bool {
	if t == nil || t.config == nil {
		return false
	}
	return t.config.Enabled && t.healthy.Load()
}

// setDegraded records why a provider could not start. Startup has no
// logger yet; Health carries the reason to whoever asks.
func (t *Telemetry) setDegraded(stage string, err error) {
	t.degraded.Store(true)
	t.reason.Store(fmt.Sprintf("%s: %v", stage, err))
}
