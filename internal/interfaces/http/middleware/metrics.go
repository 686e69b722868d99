package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invoicegen/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// HTTPMetricsConfig configures HTTPMetrics.
// A nil Meter disables the middleware.
type HTTPMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

type requestMetrics struct {
	total    *telemetry.Counter
	duration *telemetry.Histogram
	upload   *telemetry.Histogram
	response *telemetry.Histogram
	inFlight metric.Int64UpDownCounter
}

func newRequestMetrics(meter metric.Meter) (*requestMetrics, error) {
	in := telemetry.NewInstruments(meter)
	m := &requestMetrics{
		total: in.Counter("http_server_request_total",
			"Total number of HTTP requests", "{request}"),
		duration: in.Histogram("http_server_request_duration_seconds",
			"HTTP request latency in seconds", "s", telemetry.HTTPDurationBuckets),
		upload: in.Histogram("http_server_request_size_bytes",
			"Request body size; generation requests carry logo and signature uploads", "By",
			telemetry.UploadSizeBuckets),
		response: in.Histogram("http_server_response_size_bytes",
			"Response body size; PDFs dominate the upper buckets", "By",
			telemetry.PDFSizeBuckets),
		inFlight: in.Gauge("http_server_active_requests",
			"HTTP requests currently being served", "{request}"),
	}
	return m, in.Err()
}

// HTTPMetrics records request count, latency, body sizes and in-flight requests
// labelled by route pattern.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if cfg.Meter == nil {
		return passThrough
	}
	m, err := newRequestMetrics(cfg.Meter)
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		m.inFlight.Add(ctx, 1)
		defer m.inFlight.Add(ctx, -1)

		c.Next()

		status := c.Writer.Status()
		route := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(routePattern(c)),
		}
		m.total.Inc(ctx, append(route,
			telemetry.AttrHTTPStatusCode.Int(status),
			telemetry.AttrHTTPStatusClass.String(StatusGroup(status)),
		)...)
		m.duration.Seconds(ctx, time.Since(start), route...)

		if n := c.Request.ContentLength; n > 0 {
			m.upload.Observe(ctx, float64(n), route...)
		}
		if n := c.Writer.Size(); n > 0 {
			m.response.Observe(ctx, float64(n), route...)
		}
	}
}

// routePattern returns the matched route, never the raw path.
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}

// StatusGroup returns the class of a status code, e.g. "4xx".
func StatusGroup(status int) string {
	if status < 200 || status > 599 {
		return "other"
	}
	return string(rune('0'+status/100)) + "xx"
}

func passThrough(c *gin.Context) {
	c.Next()
}
