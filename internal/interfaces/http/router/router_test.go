package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	documentapp "github.com/invoicegen/backend/internal/application/document"
	"github.com/invoicegen/backend/internal/interfaces/http/handler"
	"github.com/invoicegen/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "/api", r.BasePath())
	assert.Empty(t, r.groups)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	calls := 0

	guarded := Group{
		Name:       "guarded",
		Prefix:     "/guarded",
		Middleware: []gin.HandlerFunc{func(c *gin.Context) { calls++; c.Next() }},
		Routes: []Route{
			{http.MethodGet, "/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") }},
			{http.MethodPost, "/echo", func(c *gin.Context) { c.String(http.StatusCreated, "created") }},
		},
	}
	open := Group{
		Name:   "open",
		Prefix: "/open",
		Routes: []Route{{http.MethodGet, "", func(c *gin.Context) { c.Status(http.StatusOK) }}},
	}
	NewRouter(engine, WithAPIVersion("v1")).Register(guarded, open).Setup()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/guarded/ping", http.StatusOK},
		{http.MethodPost, "/api/v1/guarded/echo", http.StatusCreated},
		{http.MethodGet, "/api/v1/open", http.StatusOK},
		{http.MethodGet, "/api/open", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, w.Code, tt.path)
	}
	assert.Equal(t, 2, calls, "middleware runs for its own group only")
}

func TestAPIRoutes(t *testing.T) {
	svc := documentapp.NewGenerationService(nil, nil, nil, documentapp.ServiceConfig{}, nil)
	h := Handlers{
		Document: handler.NewDocumentHandler(svc),
		System:   handler.NewSystemHandler(handler.SystemInfo{Name: "test", Version: "0.0.1", Engine: svc.Engine()}),
	}

	limited := 0
	limit := func(c *gin.Context) {
		limited++
		c.Next()
	}

	engine := gin.New()
	NewRouter(engine).Register(APIRoutes(h, limit)...).Setup()

	routes := map[string]bool{}
	for _, ri := range engine.Routes() {
		routes[ri.Method+" "+ri.Path] = true
	}
	for _, want := range []string{
		"POST /api/invoices/generate-pdf",
		"POST /api/invoices/totals",
		"POST /api/receipts/generate-pdf",
		"POST /api/receipts/totals",
		"GET /api/templates",
		"GET /api/health",
		"GET /api/system/info",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}

	t.Run("health is not rate limited", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"healthy"`)
		assert.Equal(t, 0, limited)
	})

	t.Run("document endpoints are rate limited", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/invoices/totals",
			strings.NewReader(`{"items":[{"description":"A","quantity":1,"unit_price":2}]}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, limited)
	})
}

func TestAPIRoutes_NilLimit(t *testing.T) {
	svc := documentapp.NewGenerationService(nil, nil, nil, documentapp.ServiceConfig{}, nil)
	h := Handlers{
		Document: handler.NewDocumentHandler(svc),
		System:   handler.NewSystemHandler(handler.SystemInfo{}),
	}

	engine := gin.New()
	NewRouter(engine).Register(APIRoutes(h, nil)...).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/templates?kind=receipt", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"thermal"`)
}
