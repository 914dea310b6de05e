package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Telemetry owns the tracer and meter providers for the process.
//
// A provider that fails to start does not stop the wiki from serving. The
// instance is marked degraded with the reason, and Tracer or Meter fall back
// to the global providers, which are no-ops unless something else set them.
// Health reports both states on /health.
//
// All methods are safe on a nil *Telemetry.
type Telemetry struct {
	config *Config

	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	logProvider    log.LoggerProvider

	healthy  atomic.Bool
	degraded atomic.Bool
	reason   atomic.Value // string
}

// New validates cfg and builds providers.
//
// A disabled config yields an instance that is healthy but exports
// nothing. When enabled, the trace and meter providers are built from
// the OTLP endpoint in cfg, or from the exporter and reader given as
// options, and installed as the otel globals together with the W3C trace
// context and baggage propagators.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	t := &Telemetry{config: cfg}
	t.healthy.Store(true)

	if !cfg.Enabled {
		return t, nil
	}

	res := newResource(cfg)

	tp, err := newTracerProvider(ctx, cfg, res, o)
	if err != nil {
		t.setDegraded("tracer provider failed: %v", err)
	} else {
		t.tracerProvider = tp
		otel.SetTracerProvider(tp)
	}

	mp, err := newMeterProvider(ctx, cfg, res, o)
	if err != nil {
		t.setDegraded("meter provider failed: %v", err)
	} else if mp != nil {
		t.meterProvider = mp
		otel.SetMeterProvider(mp)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return t, nil
}

// Tracer returns a tracer for the given instrumentation scope, from the
// SDK provider when it started and the global provider otherwise.
func (t *Telemetry) Tracer(name string, opts ...oteltrace.TracerOption) oteltrace.Tracer {
	if t == nil || t.tracerProvider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return t.tracerProvider.Tracer(name, opts...)
}

// Meter returns a meter for the given instrumentation scope. The fallback
// matches Tracer.
func (t *Telemetry) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if t == nil || t.meterProvider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return t.meterProvider.Meter(name, opts...)
}

// LoggerProvider returns the provider for the zap log bridge. It is nil
// while telemetry is disabled, which keeps logs on stdout only.
func (t *Telemetry) LoggerProvider() log.LoggerProvider {
	if t == nil {
		return nil
	}
	if t.logProvider != nil {
		return t.logProvider
	}
	if t.IsEnabled() {
		return global.GetLoggerProvider()
	}
	return nil
}

// SetLoggerProvider overrides the provider returned by LoggerProvider.
func (t *Telemetry) SetLoggerProvider(lp log.LoggerProvider) {
	if t != nil {
		t.logProvider = lp
	}
}

// sdkProvider is the lifecycle surface shared by the trace and metric SDK
// providers.
type sdkProvider interface {
	Shutdown(ctx context.Context) error
	ForceFlush(ctx context.Context) error
}

// signal pairs a running provider with the name used in its errors.
type signal struct {
	name     string
	provider sdkProvider
}

// signals lists the providers New managed to start, traces first.
func (t *Telemetry) signals() []signal {
	var out []signal
	if t.tracerProvider != nil {
		out = append(out, signal{name: "trace", provider: t.tracerProvider})
	}
	if t.meterProvider != nil {
		out = append(out, signal{name: "meter", provider: t.meterProvider})
	}
	return out
}

// eachSignal runs fn on every running provider and joins the failures.
// One provider failing does not stop the others.
func (t *Telemetry) eachSignal(action string, fn func(sdkProvider) error) error {
	var errs []error
	for _, s := range t.signals() {
		if err := fn(s.provider); err != nil {
			errs = append(errs, fmt.Errorf("%s provider %s: %w", s.name, action, err))
		}
	}
	return errors.Join(errs...)
}

// Shutdown flushes pending spans and metrics and stops the providers.
// Without a deadline on ctx, the configured shutdown timeout applies.
// After Shutdown, Health reports unhealthy and IsEnabled returns false,
// so a late LoggerProvider call no longer hands out the OTEL bridge.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok && t.config != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Shutdown.Timeout.Duration())
		defer cancel()
	}

	err := t.eachSignal("shutdown", func(p sdkProvider) error { return p.Shutdown(ctx) })
	t.healthy.Store(false)
	return err
}

// ForceFlush exports pending spans and metrics without stopping anything.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.eachSignal("flush", func(p sdkProvider) error { return p.ForceFlush(ctx) })
}

// HealthStatus reports whether telemetry is running and why it degraded.
type HealthStatus struct {
	Healthy  bool   `json:"healthy"`
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
}

// Health returns the current telemetry health status. A nil instance is
// reported as degraded rather than panicking, so /health keeps answering.
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

// IsEnabled reports whether telemetry is configured on and has not been
// shut down.
func (t *Telemetry) IsEnabled() bool {
	if t == nil || t.config == nil {
		return false
	}
	return t.config.Enabled && t.healthy.Load()
}

// setDegraded records why a provider could not start. The last reason wins.
func (t *Telemetry) setDegraded(format string, args ...any) {
	t.degraded.Store(true)
	t.reason.Store(fmt.Sprintf(format, args...))
}
