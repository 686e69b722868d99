package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	keys := []string{
		"DOCGEN_APP_NAME",
		"DOCGEN_APP_ENV",
		"DOCGEN_APP_PORT",
		"DOCGEN_HTTP_MAX_BODY_SIZE",
		"DOCGEN_HTTP_RATE_LIMIT_REQUESTS",
		"DOCGEN_HTTP_CORS_ALLOW_ORIGINS",
		"DOCGEN_LOG_LEVEL",
		"DOCGEN_RENDERING_ENGINE",
		"DOCGEN_RENDERING_TIMEOUT",
		"DOCGEN_RENDERING_NO_SANDBOX",
		"DOCGEN_RENDERING_MAX_ATTACHMENT_BYTES",
		"DOCGEN_TELEMETRY_SAMPLING_RATIO",
		"DOCGEN_TELEMETRY_PROFILING_ENABLED",
		"DOCGEN_TELEMETRY_PROFILING_SERVER",
		"DOCGEN_REDIS_ENABLED",
		"DOCGEN_REDIS_PORT",
	}
	originalEnv := make(map[string]string, len(keys))
	for _, k := range keys {
		originalEnv[k] = os.Getenv(k)
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "docgen", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.False(t, cfg.IsProduction())

		assert.Equal(t, int64(2<<20), cfg.HTTP.MaxBodySize)
		assert.Equal(t, int64(1<<20), cfg.HTTP.MaxJSONBodySize)
		assert.Equal(t, 60, cfg.HTTP.RateLimitRequests)
		assert.Equal(t, time.Minute, cfg.HTTP.RateLimitWindow)
		assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
		assert.Equal(t, []string{"GET", "POST", "OPTIONS"}, cfg.HTTP.CORSAllowMethods)

		assert.Equal(t, "gofpdf", cfg.Rendering.Engine)
		assert.Equal(t, 30*time.Second, cfg.Rendering.Timeout)
		assert.Equal(t, int64(150*1024), cfg.Rendering.MaxAttachmentBytes)
		assert.Equal(t, 600, cfg.Rendering.LogoBoxWidth)
		assert.Equal(t, 180, cfg.Rendering.SignatureBoxHeight)

		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, "docgen", cfg.Telemetry.ServiceName)

		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost", cfg.Redis.Host)
		assert.Equal(t, 6379, cfg.Redis.Port)
	})

	t.Run("loads values from environment variables with DOCGEN prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("DOCGEN_APP_NAME", "docgen-test")
		os.Setenv("DOCGEN_APP_PORT", "9000")
		os.Setenv("DOCGEN_LOG_LEVEL", "debug")
		os.Setenv("DOCGEN_RENDERING_ENGINE", "ChromeDP")
		os.Setenv("DOCGEN_RENDERING_TIMEOUT", "45s")
		os.Setenv("DOCGEN_RENDERING_NO_SANDBOX", "true")
		os.Setenv("DOCGEN_REDIS_ENABLED", "true")
		os.Setenv("DOCGEN_REDIS_PORT", "6380")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "docgen-test", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "chromedp", cfg.Rendering.Engine)
		assert.Equal(t, 45*time.Second, cfg.Rendering.Timeout)
		assert.True(t, cfg.Rendering.NoSandbox)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, 6380, cfg.Redis.Port)
		assert.Equal(t, "docgen-test", cfg.Telemetry.ServiceName)
	})

	t.Run("rejects unknown rendering engine", func(t *testing.T) {
		clearEnv()
		os.Setenv("DOCGEN_RENDERING_ENGINE", "wkhtmltopdf")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rendering.engine")
	})

	t.Run("attachment ceiling cannot exceed body limit", func(t *testing.T) {
		clearEnv()
		os.Setenv("DOCGEN_HTTP_MAX_BODY_SIZE", "1024")
		os.Setenv("DOCGEN_RENDERING_MAX_ATTACHMENT_BYTES", "4096")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates sampling ratio range", func(t *testing.T) {
		clearEnv()
		os.Setenv("DOCGEN_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})

	t.Run("profiling requires a server", func(t *testing.T) {
		clearEnv()
		os.Setenv("DOCGEN_TELEMETRY_PROFILING_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "profiling_server")

		os.Setenv("DOCGEN_TELEMETRY_PROFILING_SERVER", "http://pyroscope:4040")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Telemetry.ProfilingEnabled)
	})

	t.Run("production rejects wildcard CORS", func(t *testing.T) {
		clearEnv()
		os.Setenv("DOCGEN_APP_ENV", "production")
		os.Setenv("DOCGEN_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})

	t.Run("production rejects local unsandboxed chrome", func(t *testing.T) {
		clearEnv()
		os.Setenv("DOCGEN_APP_ENV", "production")
		os.Setenv("DOCGEN_RENDERING_ENGINE", "chromedp")
		os.Setenv("DOCGEN_RENDERING_NO_SANDBOX", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no_sandbox")
	})
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		App:       AppConfig{Name: "custom"},
		Rendering: RenderingConfig{Engine: "chromedp", Timeout: 5 * time.Second},
		Telemetry: TelemetryConfig{ServiceName: "custom-otel"},
	}

	applyDefaults(cfg)

	assert.Equal(t, "custom", cfg.App.Name)
	assert.Equal(t, "chromedp", cfg.Rendering.Engine)
	assert.Equal(t, 5*time.Second, cfg.Rendering.Timeout)
	assert.Equal(t, "custom-otel", cfg.Telemetry.ServiceName)
	assert.Equal(t, 60*time.Second, cfg.HTTP.WriteTimeout)
}
