package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig configures server spans. A nil TracerProvider uses the
// global one.
type TracingConfig struct {
	ServiceName    string
	Enabled        bool
	TracerProvider trace.TracerProvider
}

// Tracing returns the handlers that open a server span per request and
// annotate it. Span names are "METHOD route", e.g.
// "POST /api/invoices/generate-pdf". Install after RequestID:
//
//	engine.Use(middleware.Tracing(cfg)...)
func Tracing(cfg TracingConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}
	name := cfg.ServiceName
	if name == "" {
		name = "docgen"
	}

	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return []gin.HandlerFunc{otelgin.Middleware(name, opts...), annotateSpan}
}

// spanStatusText describes client errors worth telling apart in traces.
// 5xx statuses are set by otelgin itself.
var spanStatusText = map[int]string{
	http.StatusNotFound:              "Not Found",
	http.StatusRequestEntityTooLarge: "Request Too Large",
	http.StatusTooManyRequests:       "Rate Limited",
}

// annotateSpan tags the span with the request ID and marks every 4xx
// and 5xx response as an error.
func annotateSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		c.Next()
		return
	}
	if id := c.GetString(ContextKeyRequestID); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}

	c.Next()

	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		return
	}
	text, ok := spanStatusText[status]
	switch {
	case ok:
	case status >= http.StatusInternalServerError:
		text = "Internal Server Error"
	default:
		text = "Client Error"
	}
	span.SetStatus(codes.Error, text)
	span.SetAttributes(attribute.Int("http.status_code", status))
}
