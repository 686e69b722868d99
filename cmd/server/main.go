package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	documentapp "github.com/invoicegen/backend/internal/application/document"
	"github.com/invoicegen/backend/internal/infrastructure/cache"
	"github.com/invoicegen/backend/internal/infrastructure/config"
	"github.com/invoicegen/backend/internal/infrastructure/logger"
	"github.com/invoicegen/backend/internal/infrastructure/printing"
	"github.com/invoicegen/backend/internal/infrastructure/telemetry"
	"github.com/invoicegen/backend/internal/interfaces/http/handler"
	"github.com/invoicegen/backend/internal/interfaces/http/middleware"
	"github.com/invoicegen/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Document Generator API
//	@version		1.0
//	@description	Generates invoice and receipt PDFs from submitted records.

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	log.Info("Starting document generator",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("engine", cfg.Rendering.Engine),
	)

	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, telemetry.Options{
		Collector: telemetry.Collector{
			Endpoint:       cfg.Telemetry.CollectorEndpoint,
			Insecure:       cfg.Telemetry.Insecure,
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: cfg.App.Version,
		},
		Traces:          cfg.Telemetry.Enabled,
		SamplingRatio:   cfg.Telemetry.SamplingRatio,
		Metrics:         cfg.Telemetry.MetricsEnabled,
		MetricsInterval: cfg.Telemetry.MetricsInterval,
		Logs:            cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	// from here on, log entries also go to the collector
	if providers.LogsEnabled() {
		baseCore, err := logger.NewCore(logCfg)
		if err != nil {
			log.Fatal("Failed to build log core", zap.Error(err))
		}
		bridged, err := providers.BridgeLogger(baseCore, logger.ParseLevel(cfg.Log.Level), logger.Options()...)
		if err != nil {
			log.Fatal("Failed to bridge logs", zap.Error(err))
		}
		log = bridged
	}
	defer func() {
		_ = log.Sync()
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServer,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilingUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingPassword,
		ProfileTypes:      cfg.Telemetry.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && !providers.EnableSpanProfiles() {
		log.Info("Span profiles need tracing enabled")
	}

	documentMetrics, err := telemetry.NewDocumentMetrics(providers.Meter("document"), log)
	if err != nil {
		log.Fatal("Failed to create document metrics", zap.Error(err))
	}

	// Rendering
	renderer, err := printing.NewRenderer(printing.RendererOptions{
		Engine:     cfg.Rendering.Engine,
		Timeout:    cfg.Rendering.Timeout,
		ChromePath: cfg.Rendering.ChromePath,
		ChromeURL:  cfg.Rendering.ChromeURL,
		NoSandbox:  cfg.Rendering.NoSandbox,
		Logger:     log,
	})
	if err != nil {
		log.Fatal("Failed to initialize renderer", zap.Error(err))
	}

	attachments := printing.NewAttachmentProcessor(&printing.AttachmentConfig{
		MaxBytes:  cfg.Rendering.MaxAttachmentBytes,
		MaxPixels: cfg.Rendering.MaxImagePixels,
		LogoBox: printing.BoxSize{
			Width:  uint(cfg.Rendering.LogoBoxWidth),
			Height: uint(cfg.Rendering.LogoBoxHeight),
		},
		SignatureBox: printing.BoxSize{
			Width:  uint(cfg.Rendering.SignatureBoxWidth),
			Height: uint(cfg.Rendering.SignatureBoxHeight),
		},
		Logger: log,
	})

	generationService := documentapp.NewGenerationService(renderer, attachments, documentMetrics,
		documentapp.ServiceConfig{
			Engine:        cfg.Rendering.Engine,
			RenderTimeout: cfg.Rendering.Timeout,
		}, log)

	// Handlers
	documentHandler := handler.NewDocumentHandler(generationService)
	systemHandler := handler.NewSystemHandler(handler.SystemInfo{
		Name:    cfg.App.Name,
		Version: cfg.App.Version,
		Engine:  generationService.Engine(),
	})

	// Rate limiting
	var rateLimitStore cache.RateLimitStore
	var limit gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		factoryOpts := []cache.RateLimitStoreFactoryOption{cache.WithLogger(log)}
		if cfg.Redis.Enabled {
			factoryOpts = append(factoryOpts, cache.WithRedis(cache.RedisConfig{
				Host:     cfg.Redis.Host,
				Port:     cfg.Redis.Port,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			}))
		}
		rateLimitStore, err = cache.NewRateLimitStoreFactory(cache.RateLimit{
			Requests: cfg.HTTP.RateLimitRequests,
			Window:   cfg.HTTP.RateLimitWindow,
		}, factoryOpts...).CreateStore()
		if err != nil {
			log.Fatal("Failed to create rate limit store", zap.Error(err))
		}
		limit = middleware.RateLimit(middleware.RateLimitConfig{
			Store:  rateLimitStore,
			Logger: log,
		})
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()
	engine.MaxMultipartMemory = cfg.HTTP.MaxBodySize
	engine.HandleMethodNotAllowed = true

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Logger - Log requests
	// 3. Recovery - Catch panics
	// 4. Tracing - Server span, request ID attribute, error status
	// 5. Metrics and profiling labels
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	// 8. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.AccessLog(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     providers.TracingEnabled(),
	})...)
	if providers.MetricsEnabled() {
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			Meter:  providers.Meter("http.server"),
			Logger: log,
		}))
	}
	if profiler.IsEnabled() {
		engine.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))
	}
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		MaxBytes:     cfg.HTTP.MaxBodySize,
		MaxJSONBytes: cfg.HTTP.MaxJSONBodySize,
	}))

	router.NewRouter(engine).
		Register(router.APIRoutes(router.Handlers{
			Document: documentHandler,
			System:   systemHandler,
		}, limit)...).
		Setup()
	engine.NoRoute(systemHandler.NotFound)
	engine.NoMethod(systemHandler.MethodNotAllowed)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := renderer.Close(); err != nil {
		log.Warn("Failed to close renderer", zap.Error(err))
	}
	if rateLimitStore != nil {
		if err := rateLimitStore.Close(); err != nil {
			log.Warn("Failed to close rate limit store", zap.Error(err))
		}
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Failed to stop profiler", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	_ = log.Sync()
	// flushes the exported logs too, so it goes last
	_ = providers.Shutdown(shutdownCtx)
}
