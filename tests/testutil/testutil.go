// Package testutil drives a gin engine in tests: it builds JSON and
// multipart requests, records responses and checks the API envelopes.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Result is a response recorded from an engine
type Result struct {
	Recorder *httptest.ResponseRecorder
}

// Serve runs req through h and records the response
func Serve(h http.Handler, req *http.Request) *Result {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return &Result{Recorder: rec}
}

func (r *Result) Status() int { return r.Recorder.Code }

func (r *Result) Body() []byte { return r.Recorder.Body.Bytes() }

// Header returns the first value of a response header
func (r *Result) Header(key string) string { return r.Recorder.Header().Get(key) }

// PNG encodes a w x h image with a diagonal stripe.
func PNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{B: 180, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
