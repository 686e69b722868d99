// Package telemetry exports traces, metrics and logs of the document service
// over OTLP and runs the Pyroscope profiler.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const (
	shutdownTimeout        = 10 * time.Second
	defaultMetricsInterval = 60 * time.Second
)

// Collector identifies the OTLP endpoint and how this service presents itself to it.
type Collector struct {
	Endpoint       string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
}

// Options selects the signals to export.
type Options struct {
	Collector Collector

	Traces        bool
	SamplingRatio float64

	Metrics         bool
	MetricsInterval time.Duration

	Logs bool
}

// Providers owns the SDK providers of every exported signal.
// Signals that are not exported fall back to the global no-op providers.
type Providers struct {
	opts   Options
	logger *zap.Logger

	traces  *sdktrace.TracerProvider
	metrics *sdkmetric.MeterProvider
	logs    *sdklog.LoggerProvider

	mu           sync.Mutex
	spanProfiles bool
}

// Setup starts the exporters selected in opts and installs them globally.
// Exporters dial lazily, so an unreachable collector does not fail startup.
func Setup(ctx context.Context, opts Options, logger *zap.Logger) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Providers{opts: opts, logger: logger}

	if !opts.Traces && !opts.Metrics && !opts.Logs {
		logger.Info("Telemetry export disabled")
		return p, nil
	}

	res, err := newResource(opts.Collector)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	starters := []struct {
		on    bool
		start func(context.Context, *resource.Resource) error
	}{
		{opts.Traces, p.startTraces},
		{opts.Metrics, p.startMetrics},
		{opts.Logs, p.startLogs},
	}
	for _, s := range starters {
		if !s.on {
			continue
		}
		if err := s.start(ctx, res); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}

	logger.Info("Telemetry export started",
		zap.String("collector_endpoint", opts.Collector.Endpoint),
		zap.String("service_name", opts.Collector.ServiceName),
		zap.Bool("traces", opts.Traces),
		zap.Float64("sampling_ratio", opts.SamplingRatio),
		zap.Bool("metrics", opts.Metrics),
		zap.Bool("logs", opts.Logs),
	)
	return p, nil
}

func newResource(c Collector) (*resource.Resource, error) {
	version := c.ServiceVersion
	if version == "" {
		version = "dev"
	}
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(c.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
}

func (p *Providers) startTraces(ctx context.Context, res *resource.Resource) error {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(p.opts.Collector.Endpoint)}
	if p.opts.Collector.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	p.traces = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(p.opts.SamplingRatio)),
	)
	otel.SetTracerProvider(p.traces)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return nil
}

// sampler keeps every trace at ratio >= 1 and none at ratio <= 0.
// In between, the parent's decision wins.
func sampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	if ratio <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

func (p *Providers) startMetrics(ctx context.Context, res *resource.Resource) error {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(p.opts.Collector.Endpoint)}
	if p.opts.Collector.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	interval := p.opts.MetricsInterval
	if interval <= 0 {
		interval = defaultMetricsInterval
	}
	p.metrics = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(p.metrics)
	return nil
}

func (p *Providers) startLogs(ctx context.Context, res *resource.Resource) error {
	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(p.opts.Collector.Endpoint)}
	if p.opts.Collector.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP logs exporter: %w", err)
	}

	p.logs = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(p.logs)
	return nil
}

// TracingEnabled reports whether spans are exported.
func (p *Providers) TracingEnabled() bool { return p != nil && p.traces != nil }

// MetricsEnabled reports whether metrics are exported.
func (p *Providers) MetricsEnabled() bool { return p != nil && p.metrics != nil }

// LogsEnabled reports whether log records are exported.
func (p *Providers) LogsEnabled() bool { return p != nil && p.logs != nil }

// Meter returns a meter from the exporting provider, or from the global one
// when metrics are not exported.
func (p *Providers) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if !p.MetricsEnabled() {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return p.metrics.Meter(name, opts...)
}

// EnableSpanProfiles tags profiler samples with the span that produced them.
// It returns false when spans are not exported. Start the profiler first.
func (p *Providers) EnableSpanProfiles() bool {
	if !p.TracingEnabled() {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.spanProfiles {
		otel.SetTracerProvider(otelpyroscope.NewTracerProvider(p.traces))
		p.spanProfiles = true
		p.logger.Info("Span profiles enabled")
	}
	return true
}

// Shutdown flushes and stops every exporter. It is safe to call more than once.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if p.traces != nil {
		if err := p.traces.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("traces: %w", err))
		}
	}
	if p.metrics != nil {
		if err := p.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics: %w", err))
		}
	}
	if p.logs != nil {
		if err := p.logs.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("logs: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		p.logger.Error("Telemetry shutdown incomplete", zap.Error(err))
		return err
	}
	return nil
}
