package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Log       LogConfig
	Rendering RenderingConfig
	Telemetry TelemetryConfig
	Redis     RedisConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	Version string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	MaxJSONBodySize   int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// RenderingConfig holds PDF rendering settings
type RenderingConfig struct {
	Engine             string        // gofpdf or chromedp
	Timeout            time.Duration // upper bound for one render
	ChromePath         string        // chromedp only; empty searches PATH
	ChromeURL          string        // chromedp only; remote DevTools endpoint
	NoSandbox          bool          // chromedp only; required when running as root
	MaxAttachmentBytes int64
	MaxImagePixels     int
	LogoBoxWidth       int
	LogoBoxHeight      int
	SignatureBoxWidth  int
	SignatureBoxHeight int
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool    // traces
	CollectorEndpoint string  // OTEL Collector gRPC endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool // non-TLS collector connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	ProfilingEnabled  bool
	ProfilingServer   string
	ProfilingUser     string
	ProfilingPassword string
	ProfileTypes      []string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool // share rate limit counters through Redis
	Host     string
	Port     int
	Password string
	DB       int
}

var validEngines = map[string]bool{"gofpdf": true, "chromedp": true}

// Load loads configuration from an optional .env file, config.toml and
// environment variables.
// Priority (highest to lowest):
// 1. Environment variables with DOCGEN_ prefix (e.g., DOCGEN_RENDERING_ENGINE)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	// variables already set in the environment win over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/docgen")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("DOCGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			Version: v.GetString("app.version"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			MaxJSONBodySize:   v.GetInt64("http.max_json_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Rendering: RenderingConfig{
			Engine:             strings.ToLower(v.GetString("rendering.engine")),
			Timeout:            v.GetDuration("rendering.timeout"),
			ChromePath:         v.GetString("rendering.chrome_path"),
			ChromeURL:          v.GetString("rendering.chrome_url"),
			NoSandbox:          v.GetBool("rendering.no_sandbox"),
			MaxAttachmentBytes: v.GetInt64("rendering.max_attachment_bytes"),
			MaxImagePixels:     v.GetInt("rendering.max_image_pixels"),
			LogoBoxWidth:       v.GetInt("rendering.logo_box_width"),
			LogoBoxHeight:      v.GetInt("rendering.logo_box_height"),
			SignatureBoxWidth:  v.GetInt("rendering.signature_box_width"),
			SignatureBoxHeight: v.GetInt("rendering.signature_box_height"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			ProfilingServer:   v.GetString("telemetry.profiling_server"),
			ProfilingUser:     v.GetString("telemetry.profiling_user"),
			ProfilingPassword: v.GetString("telemetry.profiling_password"),
			ProfileTypes:      v.GetStringSlice("telemetry.profile_types"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "docgen"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "dev"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// must outlast the render timeout
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	if cfg.HTTP.MaxJSONBodySize == 0 {
		cfg.HTTP.MaxJSONBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 60
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// CORS origins have no default: cross-origin requests stay disabled until configured
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Rendering.Engine == "" {
		cfg.Rendering.Engine = "gofpdf"
	}
	if cfg.Rendering.Timeout == 0 {
		cfg.Rendering.Timeout = 30 * time.Second
	}
	if cfg.Rendering.MaxAttachmentBytes == 0 {
		cfg.Rendering.MaxAttachmentBytes = 150 * 1024
	}
	if cfg.Rendering.MaxImagePixels == 0 {
		cfg.Rendering.MaxImagePixels = 4000
	}
	if cfg.Rendering.LogoBoxWidth == 0 {
		cfg.Rendering.LogoBoxWidth = 600
	}
	if cfg.Rendering.LogoBoxHeight == 0 {
		cfg.Rendering.LogoBoxHeight = 300
	}
	if cfg.Rendering.SignatureBoxWidth == 0 {
		cfg.Rendering.SignatureBoxWidth = 480
	}
	if cfg.Rendering.SignatureBoxHeight == 0 {
		cfg.Rendering.SignatureBoxHeight = 180
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if !validEngines[c.Rendering.Engine] {
		return fmt.Errorf("rendering.engine must be gofpdf or chromedp, got %q", c.Rendering.Engine)
	}
	if c.Rendering.Timeout < 0 {
		return fmt.Errorf("rendering.timeout cannot be negative")
	}
	if c.Rendering.MaxAttachmentBytes < 0 {
		return fmt.Errorf("rendering.max_attachment_bytes cannot be negative")
	}
	if c.Rendering.MaxAttachmentBytes > c.HTTP.MaxBodySize {
		return fmt.Errorf("rendering.max_attachment_bytes (%d) cannot exceed http.max_body_size (%d)",
			c.Rendering.MaxAttachmentBytes, c.HTTP.MaxBodySize)
	}
	if c.HTTP.RateLimitRequests < 0 {
		return fmt.Errorf("http.rate_limit_requests cannot be negative")
	}

	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Rendering.NoSandbox && c.Rendering.ChromeURL == "" && c.Rendering.Engine == "chromedp" {
			return fmt.Errorf("rendering.no_sandbox requires a remote browser (rendering.chrome_url) in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilingServer == "" {
		return fmt.Errorf("telemetry.profiling_server is required when profiling is enabled")
	}

	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
