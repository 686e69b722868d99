package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(limit int64) *gin.Engine {
		router := gin.New()
		router.Use(BodyLimit(limit))
		router.POST("/test", func(c *gin.Context) {
			if _, err := io.ReadAll(c.Request.Body); err != nil {
				if IsBodyTooLarge(err) {
					AbortTooLarge(c)
					return
				}
				c.String(http.StatusBadRequest, "read failed")
				return
			}
			c.String(http.StatusOK, "ok")
		})
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	t.Run("allows request within limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader([]byte("small body")))
		w := httptest.NewRecorder()
		newRouter(1024).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects request exceeding Content-Length limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("x", 200)))
		req.ContentLength = 200
		w := httptest.NewRecorder()
		newRouter(100).ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_REQUEST_TOO_LARGE")
	})

	t.Run("allows GET requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		newRouter(10).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("caps bodies without a declared length", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("x", 100)))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		newRouter(50).ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("zero limit disables the check", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("x", 100)))
		w := httptest.NewRecorder()
		newRouter(0).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestBodyLimitWithConfig_PerContentType(t *testing.T) {
	cfg := BodyLimitConfig{MaxBytes: 1000, MaxJSONBytes: 100}

	tests := []struct {
		name        string
		contentType string
		size        int
		want        int
	}{
		{"json within json cap", "application/json", 80, http.StatusOK},
		{"json over json cap", "application/json; charset=utf-8", 200, http.StatusRequestEntityTooLarge},
		{"undeclared type uses json cap", "", 200, http.StatusRequestEntityTooLarge},
		{"multipart uses upload cap", "multipart/form-data; boundary=x", 800, http.StatusOK},
		{"multipart over upload cap", "multipart/form-data; boundary=x", 1200, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(BodyLimitWithConfig(cfg))
			router.POST("/api/invoices/totals", func(c *gin.Context) {
				c.String(http.StatusOK, "ok")
			})

			req := httptest.NewRequest(http.MethodPost, "/api/invoices/totals", strings.NewReader(strings.Repeat("x", tt.size)))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestBodyLimitConfig_LimitFor(t *testing.T) {
	assert.Equal(t, int64(500), BodyLimitConfig{MaxBytes: 500}.limitFor("application/json"))
	assert.Equal(t, int64(50), BodyLimitConfig{MaxBytes: 50, MaxJSONBytes: 100}.limitFor("application/json"),
		"the smaller cap wins")
	assert.Equal(t, int64(100), BodyLimitConfig{MaxJSONBytes: 100}.limitFor("text/plain"))
	assert.Equal(t, int64(0), BodyLimitConfig{MaxJSONBytes: 100}.limitFor("multipart/form-data; boundary=b"))
}

func TestIsBodyTooLarge(t *testing.T) {
	assert.True(t, IsBodyTooLarge(&http.MaxBytesError{Limit: 10}))
	assert.False(t, IsBodyTooLarge(io.ErrUnexpectedEOF))
}
