package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of generation spans
const TracerName = "docgen"

// Generation stages recorded as span events
const (
	StageValidated  = "document.validated"
	StageTotals     = "document.totals"
	StageAttachment = "document.attachment"
	StageRendered   = "document.rendered"
)

// GenerationSpan wraps the span covering one document generation.
// A nil *GenerationSpan is valid and does nothing.
type GenerationSpan struct {
	span trace.Span
}

// StartGenerationSpan opens the "document.generate" span for kind.
// The caller must call End.
func StartGenerationSpan(ctx context.Context, kind string) (context.Context, *GenerationSpan) {
	ctx, span := otel.GetTracerProvider().Tracer(TracerName).Start(ctx, "document.generate",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(AttrDocumentKind.String(kind)),
	)
	return ctx, &GenerationSpan{span: span}
}

// Describe attaches the resolved template, currency and engine.
func (g *GenerationSpan) Describe(template, currency, engine string) {
	if g == nil {
		return
	}
	g.span.SetAttributes(
		AttrTemplate.String(template),
		AttrCurrency.String(currency),
		AttrEngine.String(engine),
	)
}

// Stage records that the generation reached stage.
func (g *GenerationSpan) Stage(stage string, attrs ...attribute.KeyValue) {
	if g == nil {
		return
	}
	g.span.AddEvent(stage, trace.WithAttributes(attrs...))
}

// Fail marks the generation failed with err.
func (g *GenerationSpan) Fail(err error) {
	if g == nil || err == nil {
		return
	}
	g.span.RecordError(err)
	g.span.SetStatus(codes.Error, err.Error())
}

// Succeed marks the generation completed.
func (g *GenerationSpan) Succeed(pages, size int) {
	if g == nil {
		return
	}
	g.span.SetAttributes(
		attribute.Int("document.pages", pages),
		attribute.Int("document.size", size),
	)
	g.span.SetStatus(codes.Ok, "")
}

// End closes the span.
func (g *GenerationSpan) End() {
	if g == nil {
		return
	}
	g.span.End()
}

// TraceIDFromContext returns the trace ID of the active span, or "".
func TraceIDFromContext(ctx context.Context) string {
	id := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !id.IsValid() {
		return ""
	}
	return id.String()
}
