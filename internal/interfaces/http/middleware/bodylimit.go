package middleware

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invoicegen/backend/internal/interfaces/http/dto"
)

// BodyLimitConfig caps request bodies. Multipart uploads, which carry the
// logo and signature, may use MaxBytes; any other body is held to
// MaxJSONBytes when that is set. Zero means no cap.
type BodyLimitConfig struct {
	MaxBytes     int64
	MaxJSONBytes int64
}

// BodyLimit caps every request body at maxBytes.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return BodyLimitWithConfig(BodyLimitConfig{MaxBytes: maxBytes})
}

// BodyLimitWithConfig rejects a declared Content-Length over the cap up front
// and wraps the body so undeclared lengths fail on read. Handlers turn that
// read error into a 413 with IsBodyTooLarge and AbortTooLarge.
func BodyLimitWithConfig(cfg BodyLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := cfg.limitFor(c.ContentType())
		if limit <= 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			AbortTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func (cfg BodyLimitConfig) limitFor(contentType string) int64 {
	if cfg.MaxJSONBytes <= 0 {
		return cfg.MaxBytes
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == gin.MIMEMultipartPOSTForm {
		return cfg.MaxBytes
	}
	if cfg.MaxBytes > 0 && cfg.MaxBytes < cfg.MaxJSONBytes {
		return cfg.MaxBytes
	}
	return cfg.MaxJSONBytes
}

// IsBodyTooLarge reports whether err came from a body capped by BodyLimit
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// AbortTooLarge answers 413 with ERR_REQUEST_TOO_LARGE
func AbortTooLarge(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeRequestTooLarge,
		"Request body exceeds maximum allowed size",
		GetRequestID(c),
	))
}
