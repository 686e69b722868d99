package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/invoicegen/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

// newTestMeter returns a meter whose data can be collected on demand.
func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	want := attribute.NewSet(attrs...)
	var total int64
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			total += dp.Value
		}
	}
	return total
}

func TestInstruments(t *testing.T) {
	reader, provider := newTestMeter(t)
	ctx := context.Background()

	in := telemetry.NewInstruments(provider.Meter("test"))
	counter := in.Counter("sample_total", "sample counter", "1")
	hist := in.Histogram("sample_seconds", "sample latency", "s", telemetry.RenderDurationBuckets)
	gauge := in.Gauge("sample_active", "samples in flight", "1")
	require.NoError(t, in.Err())

	counter.Inc(ctx, telemetry.AttrOutcome.String("completed"))
	counter.Add(ctx, 4, telemetry.AttrOutcome.String("completed"))
	hist.Seconds(ctx, 250*time.Millisecond)
	gauge.Add(ctx, 2)
	gauge.Add(ctx, -1)

	metrics := collect(t, reader)
	assert.Equal(t, int64(5), sumValue(t, metrics["sample_total"], telemetry.AttrOutcome.String("completed")))
	assert.Equal(t, int64(1), sumValue(t, metrics["sample_active"]))

	h, ok := metrics["sample_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, h.DataPoints, 1)
	assert.Equal(t, uint64(1), h.DataPoints[0].Count)
	assert.InDelta(t, 0.25, h.DataPoints[0].Sum, 1e-9)
	assert.Equal(t, telemetry.RenderDurationBuckets, h.DataPoints[0].Bounds)
}

func TestInstruments_NilMeter(t *testing.T) {
	in := telemetry.NewInstruments(nil)

	assert.Nil(t, in.Counter("x_total", "", "1"))
	assert.Nil(t, in.Histogram("x_seconds", "", "s", nil))
	assert.Nil(t, in.Gauge("x_active", "", "1"))
	assert.ErrorIs(t, in.Err(), telemetry.ErrMeterNil)
}

func TestNewDocumentMetrics_NilMeter(t *testing.T) {
	dm, err := telemetry.NewDocumentMetrics(nil, nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, dm)
}

func TestDocumentMetrics_NilReceiver(t *testing.T) {
	var dm *telemetry.DocumentMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		dm.RecordGeneration(ctx, "invoice", "modern", "gofpdf", telemetry.OutcomeCompleted, time.Second)
		dm.RecordAttachmentWarning(ctx, "invoice", "logo", "TOO_LARGE")
		dm.RecordValidationFailure(ctx, "invoice", "items")
	})
}

func TestDocumentMetrics_Record(t *testing.T) {
	reader, provider := newTestMeter(t)
	dm, err := telemetry.NewDocumentMetrics(provider.Meter("docgen"), zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx := context.Background()
	dm.RecordGeneration(ctx, "invoice", "modern", "gofpdf", telemetry.OutcomeCompleted, 120*time.Millisecond)
	dm.RecordGeneration(ctx, "invoice", "modern", "gofpdf", telemetry.OutcomeCompleted, 80*time.Millisecond)
	dm.RecordGeneration(ctx, "receipt", "thermal", "", telemetry.OutcomeRejected, time.Millisecond)
	dm.RecordAttachmentWarning(ctx, "invoice", "logo", "UNSUPPORTED_TYPE")
	dm.RecordValidationFailure(ctx, "receipt", "items")
	dm.RecordValidationFailure(ctx, "receipt", "items")

	metrics := collect(t, reader)

	generated := metrics["documents_generated_total"]
	assert.Equal(t, int64(2), sumValue(t, generated,
		telemetry.AttrDocumentKind.String("invoice"),
		telemetry.AttrTemplate.String("modern"),
		telemetry.AttrOutcome.String(telemetry.OutcomeCompleted),
	))
	assert.Equal(t, int64(1), sumValue(t, generated,
		telemetry.AttrDocumentKind.String("receipt"),
		telemetry.AttrTemplate.String("thermal"),
		telemetry.AttrOutcome.String(telemetry.OutcomeRejected),
	))

	assert.Equal(t, int64(1), sumValue(t, metrics["document_attachment_warnings_total"],
		telemetry.AttrDocumentKind.String("invoice"),
		telemetry.AttrAttachment.String("logo"),
		telemetry.AttrAttachmentCode.String("UNSUPPORTED_TYPE"),
	))
	assert.Equal(t, int64(2), sumValue(t, metrics["document_validation_failures_total"],
		telemetry.AttrDocumentKind.String("receipt"),
		telemetry.AttrField.String("items"),
	))

	duration, ok := metrics["document_generation_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range duration.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}
