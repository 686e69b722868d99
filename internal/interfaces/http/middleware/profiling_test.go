package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/invoicegen/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
)

func labelsSeenByHandler(t *testing.T, cfg ProfilingConfig, route, method, path string) map[string]string {
	t.Helper()

	got := map[string]string{}
	r := gin.New()
	r.Use(ProfilingWithConfig(cfg))
	r.Handle(method, route, func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(key, value string) bool {
			got[key] = value
			return true
		})
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	return got
}

func TestProfilingWithConfig_GenerationLabels(t *testing.T) {
	got := labelsSeenByHandler(t, DefaultProfilingConfig(),
		"/api/invoices/generate-pdf", http.MethodPost, "/api/invoices/generate-pdf")

	assert.Equal(t, map[string]string{
		telemetry.ProfilingLabelMethod:    http.MethodPost,
		telemetry.ProfilingLabelRoute:     "/api/invoices/generate-pdf",
		telemetry.ProfilingLabelKind:      "invoice",
		telemetry.ProfilingLabelOperation: "generate-pdf",
	}, got)
}

func TestProfilingWithConfig_KindlessRoute(t *testing.T) {
	got := labelsSeenByHandler(t, DefaultProfilingConfig(), "/api/templates", http.MethodGet, "/api/templates")

	assert.Equal(t, "templates", got[telemetry.ProfilingLabelOperation])
	assert.NotContains(t, got, telemetry.ProfilingLabelKind, "empty labels are dropped")
}

func TestProfilingWithConfig_SkipRoutes(t *testing.T) {
	got := labelsSeenByHandler(t, DefaultProfilingConfig(), "/api/health", http.MethodGet, "/api/health")
	assert.Empty(t, got)
}

func TestProfilingWithConfig_Disabled(t *testing.T) {
	got := labelsSeenByHandler(t, ProfilingConfig{Enabled: false},
		"/api/templates", http.MethodGet, "/api/templates")
	assert.Empty(t, got)
}

func TestDescribeRoute(t *testing.T) {
	tests := []struct {
		route     string
		kind      string
		operation string
	}{
		{"/api/invoices/generate-pdf", "invoice", "generate-pdf"},
		{"/api/receipts/totals", "receipt", "totals"},
		{"/api/:kind/generate-pdf", "", "generate-pdf"},
		{"/api/system/info", "", "info"},
		{"/api/templates", "", "templates"},
		{"/api", "", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			kind, operation := describeRoute(tt.route)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.operation, operation)
		})
	}
}
