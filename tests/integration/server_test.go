// Package integration runs the document API end to end: the production
// middleware stack, the gofpdf renderer and a rate limit store.
package integration

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	documentapp "github.com/invoicegen/backend/internal/application/document"
	"github.com/invoicegen/backend/internal/infrastructure/cache"
	"github.com/invoicegen/backend/internal/infrastructure/logger"
	"github.com/invoicegen/backend/internal/infrastructure/printing"
	"github.com/invoicegen/backend/internal/interfaces/http/handler"
	"github.com/invoicegen/backend/internal/interfaces/http/middleware"
	"github.com/invoicegen/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testOrigin      = "https://billing.example.com"
	testMaxBodySize = 2 << 20
)

// ServerOptions tunes a TestServer. The zero value serves without rate limiting.
type ServerOptions struct {
	// Store enables rate limiting of the document endpoints
	Store         cache.RateLimitStore
	MaxBodySize   int64
	RenderTimeout time.Duration
}

// TestServer is the document API wired the way cmd/server wires it
type TestServer struct {
	Engine  *gin.Engine
	Service *documentapp.GenerationService
}

// NewTestServer builds the engine with a real gofpdf renderer
func NewTestServer(t *testing.T, opts ServerOptions) *TestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	if opts.MaxBodySize == 0 {
		opts.MaxBodySize = testMaxBodySize
	}
	if opts.RenderTimeout == 0 {
		opts.RenderTimeout = 10 * time.Second
	}

	log := zap.NewNop()
	renderer, err := printing.NewRenderer(printing.RendererOptions{
		Engine:  printing.EngineFPDF,
		Timeout: opts.RenderTimeout,
		Logger:  log,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = renderer.Close()
	})

	attachments := printing.NewAttachmentProcessor(&printing.AttachmentConfig{
		MaxBytes: 512 << 10,
		Logger:   log,
	})
	service := documentapp.NewGenerationService(renderer, attachments, nil, documentapp.ServiceConfig{
		Engine:        printing.EngineFPDF,
		RenderTimeout: opts.RenderTimeout,
	}, log)

	systemHandler := handler.NewSystemHandler(handler.SystemInfo{
		Name:    "Document Generator API",
		Version: "test",
		Engine:  service.Engine(),
	})

	engine := gin.New()
	engine.MaxMultipartMemory = opts.MaxBodySize
	engine.HandleMethodNotAllowed = true

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = []string{testOrigin}

	engine.Use(middleware.RequestID())
	engine.Use(logger.AccessLog(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.BodyLimit(opts.MaxBodySize))

	var limit gin.HandlerFunc
	if opts.Store != nil {
		limit = middleware.RateLimit(middleware.RateLimitConfig{Store: opts.Store, Logger: log})
	}

	router.NewRouter(engine).
		Register(router.APIRoutes(router.Handlers{
			Document: handler.NewDocumentHandler(service),
			System:   systemHandler,
		}, limit)...).
		Setup()
	engine.NoRoute(systemHandler.NotFound)
	engine.NoMethod(systemHandler.MethodNotAllowed)

	return &TestServer{Engine: engine, Service: service}
}
