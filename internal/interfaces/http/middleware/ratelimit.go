package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/invoicegen/backend/internal/infrastructure/cache"
	"github.com/invoicegen/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RateLimitConfig configures the rate limiting middleware
type RateLimitConfig struct {
	Store cache.RateLimitStore
	// KeyFunc selects the client key, the client IP when nil
	KeyFunc func(*gin.Context) string
	// SkipPaths are never limited, e.g. health checks
	SkipPaths []string
	Logger    *zap.Logger
}

// RateLimit limits requests per client using the configured store.
// When the store fails the request is let through and the failure logged.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if cfg.Store == nil || skip[c.Request.URL.Path] || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		decision, err := cfg.Store.Allow(c.Request.Context(), keyFunc(c))
		if err != nil {
			log.Warn("Rate limit check failed, allowing request",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header(HeaderRateLimitLimit, strconv.Itoa(decision.Limit))
		c.Header(HeaderRateLimitRemain, strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
			return
		}

		c.Next()
	}
}
