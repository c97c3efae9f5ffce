package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ObservabilityManager owns the tracer and meter providers for the process
// and everything that has to be flushed on exit
type ObservabilityManager struct {
	config         ObservabilityConfig
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	closers        []func(context.Context) error
}

// NewObservabilityManager installs global tracer and meter providers built
// from cfg. When cfg is disabled nothing is installed, Tracer returns a
// no-op tracer and GetMetrics returns nil.
func NewObservabilityManager(cfg ObservabilityConfig) (*ObservabilityManager, error) {
	om := &ObservabilityManager{config: cfg}
	if !cfg.Enabled {
		return om, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("service.instance.id", cfg.ServiceInstance),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	if err := om.startTracing(res); err != nil {
		return nil, errors.Join(err, om.Shutdown(context.Background()))
	}
	if err := om.startMetrics(res); err != nil {
		return nil, errors.Join(err, om.Shutdown(context.Background()))
	}
	return om, nil
}

func (om *ObservabilityManager) startTracing(res *resource.Resource) error {
	exporter, err := om.spanExporter()
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	om.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(om.config.SampleRate)),
	)
	otel.SetTracerProvider(om.tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	om.closers = append(om.closers, om.tracerProvider.Shutdown)
	return nil
}

// spanExporter prefers console output over OTLP. With neither, spans are
// still sampled so trace IDs propagate, but nothing is exported.
func (om *ObservabilityManager) spanExporter() (sdktrace.SpanExporter, error) {
	switch {
	case om.config.ConsoleOutput:
		var opts []stdouttrace.Option
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		return stdouttrace.New(opts...)
	case om.config.OTLP.Enabled:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(om.config.OTLP.Endpoint)}
		if om.config.OTLP.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(om.config.OTLP.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(om.config.OTLP.Headers))
		}
		return otlptracehttp.New(context.Background(), opts...)
	default:
		return discardExporter{}, nil
	}
}

func (om *ObservabilityManager) startMetrics(res *resource.Resource) error {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	periodic := func(exp sdkmetric.Exporter) sdkmetric.Option {
		return sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp,
			sdkmetric.WithInterval(om.config.CollectionInterval)))
	}

	if om.config.ConsoleOutput {
		exp, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		opts = append(opts, periodic(exp))
	}

	if om.config.OTLP.Enabled {
		otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(om.config.OTLP.Endpoint)}
		if om.config.OTLP.Insecure {
			otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
		}
		if len(om.config.OTLP.Headers) > 0 {
			otlpOpts = append(otlpOpts, otlpmetrichttp.WithHeaders(om.config.OTLP.Headers))
		}
		exp, err := otlpmetrichttp.New(context.Background(), otlpOpts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		opts = append(opts, periodic(exp))
	}

	if om.config.Prometheus.Enabled {
		reader, srv, err := newPrometheusReader(om.config.Prometheus)
		if err != nil {
			return err
		}
		opts = append(opts, sdkmetric.WithReader(reader))
		servePrometheus(srv)
		om.closers = append(om.closers, srv.Shutdown)
	}

	// A provider without readers still needs one for instruments to register
	if len(opts) == 1 {
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewManualReader()))
	}

	om.meterProvider = sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(om.meterProvider)
	om.closers = append(om.closers, om.meterProvider.Shutdown)

	metrics, err := NewMetrics(om.meterProvider.Meter(om.config.ServiceName), om.config.CustomMetrics)
	if err != nil {
		return err
	}
	om.metrics = metrics
	return nil
}

// GetMetrics returns the metrics instance, nil when observability is disabled.
// All Metrics methods accept a nil receiver.
func (om *ObservabilityManager) GetMetrics() *Metrics {
	return om.metrics
}

// HTTPMiddleware wraps handlers with otelhttp spans and request metrics
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a named tracer, a no-op one when observability is disabled
func (om *ObservabilityManager) Tracer(name string) trace.Tracer {
	if !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown flushes exporters and stops the Prometheus server, in reverse
// start order
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(om.closers) - 1; i >= 0; i-- {
		errs = append(errs, om.closers[i](ctx))
	}
	om.closers = nil
	return errors.Join(errs...)
}

type discardExporter struct{}

func (discardExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }

func (discardExporter) Shutdown(context.Context) error { return nil }
