package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey struct{}

// Into returns a copy of ctx carrying log.
func Into(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// From returns the logger stored in ctx, or fallback when there is none.
// Entries carry the trace and span IDs of the span active in ctx.
// A nil fallback means a no-op logger.
func From(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	log, ok := ctx.Value(ctxKey{}).(*zap.Logger)
	if !ok || log == nil {
		log = fallback
	}
	if log == nil {
		return zap.NewNop()
	}
	return withSpan(ctx, log)
}

func withSpan(ctx context.Context, log *zap.Logger) *zap.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return log
	}
	return log.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
