package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/invoicegen/backend/internal/infrastructure/telemetry"
)

// ProfilingConfig configures request profiling labels.
type ProfilingConfig struct {
	Enabled bool
	// SkipRoutes are route patterns left unlabelled
	SkipRoutes []string
}

// DefaultProfilingConfig labels every route except the health check.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:    true,
		SkipRoutes: []string{"/api/health"},
	}
}

// ProfilingWithConfig tags the CPU samples of a request so Pyroscope can
// split them per document kind and operation. A generation request for an
// invoice is labelled
//
//	method=POST route=/api/invoices/generate-pdf kind=invoice operation=generate-pdf
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	skip := make(map[string]struct{}, len(cfg.SkipRoutes))
	for _, r := range cfg.SkipRoutes {
		skip[r] = struct{}{}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if _, ok := skip[route]; ok || route == "" {
			c.Next()
			return
		}

		kind, operation := describeRoute(route)
		labels := map[string]string{
			telemetry.ProfilingLabelMethod:    c.Request.Method,
			telemetry.ProfilingLabelRoute:     route,
			telemetry.ProfilingLabelKind:      kind,
			telemetry.ProfilingLabelOperation: operation,
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// describeRoute finds the document kind named by a route and its last
// static segment.
//
//	"/api/receipts/totals" -> "receipt", "totals"
//	"/api/system/info"     -> "", "info"
func describeRoute(route string) (kind, operation string) {
	for _, seg := range strings.Split(route, "/") {
		switch {
		case seg == "" || seg == "api":
		case seg[0] == ':' || seg[0] == '*':
		case seg == "invoices":
			kind = "invoice"
		case seg == "receipts":
			kind = "receipt"
		default:
			operation = seg
		}
	}
	return kind, operation
}
