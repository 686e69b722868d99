package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Generation outcomes used as the outcome attribute
const (
	OutcomeCompleted = "completed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// DocumentMetrics counts generated documents and the ways generation goes wrong.
type DocumentMetrics struct {
	logger *zap.Logger

	generatedTotal          *Counter
	generationDuration      *Histogram
	attachmentWarningsTotal *Counter
	validationFailuresTotal *Counter
}

// NewDocumentMetrics registers the document instruments on meter.
func NewDocumentMetrics(meter metric.Meter, logger *zap.Logger) (*DocumentMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	in := NewInstruments(meter)
	dm := &DocumentMetrics{logger: logger}
	dm.generatedTotal = in.Counter("documents_generated_total",
		"Total number of generation requests by final outcome", "{document}")
	dm.generationDuration = in.Histogram("document_generation_duration_seconds",
		"Time from receiving a record to returning its PDF", "s", RenderDurationBuckets)
	dm.attachmentWarningsTotal = in.Counter("document_attachment_warnings_total",
		"Attachments dropped from otherwise successful documents", "{attachment}")
	dm.validationFailuresTotal = in.Counter("document_validation_failures_total",
		"Field errors reported when a record is rejected", "{error}")
	if err := in.Err(); err != nil {
		return nil, err
	}

	return dm, nil
}

// RecordGeneration records the outcome and duration of one request.
// A nil receiver is a no-op.
func (m *DocumentMetrics) RecordGeneration(ctx context.Context, kind, template, engine, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.generatedTotal.Inc(ctx,
		AttrDocumentKind.String(kind),
		AttrTemplate.String(template),
		AttrOutcome.String(outcome),
	)
	m.generationDuration.Seconds(ctx, d,
		AttrDocumentKind.String(kind),
		AttrEngine.String(engine),
		AttrOutcome.String(outcome),
	)
}

// RecordAttachmentWarning counts one dropped attachment.
func (m *DocumentMetrics) RecordAttachmentWarning(ctx context.Context, kind, attachment, code string) {
	if m == nil {
		return
	}
	m.attachmentWarningsTotal.Inc(ctx,
		AttrDocumentKind.String(kind),
		AttrAttachment.String(attachment),
		AttrAttachmentCode.String(code),
	)
}

// RecordValidationFailure counts one rejected field.
func (m *DocumentMetrics) RecordValidationFailure(ctx context.Context, kind, field string) {
	if m == nil {
		return
	}
	m.validationFailuresTotal.Inc(ctx,
		AttrDocumentKind.String(kind),
		AttrField.String(field),
	)
}
