package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when instruments are requested without a meter
var ErrMeterNil = errors.New("meter cannot be nil")

// Instruments creates instruments on one meter and keeps the first failure,
// so a metrics set can be declared without checking every call.
//
//	in := telemetry.NewInstruments(meter)
//	total := in.Counter("documents_generated_total", "...", "{document}")
//	if err := in.Err(); err != nil { ... }
type Instruments struct {
	meter metric.Meter
	err   error
}

// NewInstruments returns a builder for meter.
func NewInstruments(meter metric.Meter) *Instruments {
	in := &Instruments{meter: meter}
	if meter == nil {
		in.err = ErrMeterNil
	}
	return in
}

// Err returns the first instrument creation error.
func (in *Instruments) Err() error { return in.err }

// Counter declares a monotonic int64 counter.
func (in *Instruments) Counter(name, description, unit string) *Counter {
	if in.err != nil {
		return nil
	}
	c, err := in.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		in.err = fmt.Errorf("counter %s: %w", name, err)
		return nil
	}
	return &Counter{c: c}
}

// Histogram declares a float64 histogram with explicit bucket bounds.
func (in *Instruments) Histogram(name, description, unit string, bounds []float64) *Histogram {
	if in.err != nil {
		return nil
	}
	opts := []metric.Float64HistogramOption{metric.WithDescription(description), metric.WithUnit(unit)}
	if len(bounds) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(bounds...))
	}
	h, err := in.meter.Float64Histogram(name, opts...)
	if err != nil {
		in.err = fmt.Errorf("histogram %s: %w", name, err)
		return nil
	}
	return &Histogram{h: h}
}

// Gauge declares an int64 up-down counter for in-flight work.
func (in *Instruments) Gauge(name, description, unit string) metric.Int64UpDownCounter {
	if in.err != nil {
		return nil
	}
	g, err := in.meter.Int64UpDownCounter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		in.err = fmt.Errorf("gauge %s: %w", name, err)
		return nil
	}
	return g
}

// Counter counts events.
type Counter struct {
	c metric.Int64Counter
}

// Inc adds one.
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Add adds n.
func (c *Counter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	c.c.Add(ctx, n, metric.WithAttributes(attrs...))
}

// Histogram records a distribution.
type Histogram struct {
	h metric.Float64Histogram
}

// Seconds records d in seconds.
func (h *Histogram) Seconds(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.h.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

// Observe records v as is.
func (h *Histogram) Observe(ctx context.Context, v float64, attrs ...attribute.KeyValue) {
	h.h.Record(ctx, v, metric.WithAttributes(attrs...))
}

// Attribute keys shared by spans and metrics.
var (
	AttrDocumentKind   = attribute.Key("document.kind")
	AttrTemplate       = attribute.Key("document.template")
	AttrCurrency       = attribute.Key("document.currency")
	AttrEngine         = attribute.Key("render.engine")
	AttrOutcome        = attribute.Key("outcome")
	AttrAttachment     = attribute.Key("attachment")
	AttrAttachmentCode = attribute.Key("attachment.code")
	AttrField          = attribute.Key("field")

	AttrHTTPMethod      = attribute.Key("http.method")
	AttrHTTPRoute       = attribute.Key("http.route")
	AttrHTTPStatusCode  = attribute.Key("http.status_code")
	AttrHTTPStatusClass = attribute.Key("http.status_class")
)

// Bucket bounds in seconds. Generation requests render synchronously, so
// both reach well past typical API latencies.
var (
	HTTPDurationBuckets   = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
	RenderDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
)

// Bucket bounds in bytes for request and response bodies.
var (
	UploadSizeBuckets = []float64{1 << 10, 8 << 10, 64 << 10, 256 << 10, 1 << 20, 4 << 20, 10 << 20}
	PDFSizeBuckets    = []float64{1 << 10, 16 << 10, 64 << 10, 256 << 10, 1 << 20, 4 << 20}
)
