package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header names shared by the document endpoints
const (
	HeaderRequestID         = "X-Request-ID"
	HeaderGenerationID      = "X-Generation-ID"
	HeaderAttachmentWarning = "X-Attachment-Warning"
	HeaderRateLimitLimit    = "X-RateLimit-Limit"
	HeaderRateLimitRemain   = "X-RateLimit-Remaining"
)

// ContextKeyRequestID is the gin context key holding the request ID
const ContextKeyRequestID = "request_id"

// client supplied IDs longer than this are replaced
const maxRequestIDLength = 128

// RequestID gives every request an ID and echoes it in X-Request-ID.
// A client supplied ID is kept when it is printable ASCII without spaces.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestID, or ""
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

func validRequestID(id string) bool {
	if len(id) == 0 || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
