package integration

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/invoicegen/backend/internal/domain/document"
	"github.com/invoicegen/backend/internal/infrastructure/cache"
	"github.com/invoicegen/backend/internal/interfaces/http/dto"
	"github.com/invoicegen/backend/internal/interfaces/http/handler"
	"github.com/invoicegen/backend/internal/interfaces/http/middleware"
	"github.com/invoicegen/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Rate Limiting Tests
// ============================================================================

func TestPenetration_RateLimiting(t *testing.T) {
	store := cache.NewInMemoryRateLimitStore(cache.RateLimit{Requests: 3, Window: time.Hour})
	t.Cleanup(func() { _ = store.Close() })
	ts := NewTestServer(t, ServerOptions{Store: store})

	totalsFrom := func(addr string) *testutil.Result {
		req := testutil.NewRequest(t, http.MethodPost, "/api/invoices/totals", invoicePayload)
		req.RemoteAddr = addr
		return testutil.Serve(ts.Engine, req)
	}

	t.Run("requests_within_limit_pass", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			res := totalsFrom("198.51.100.7:40000")
			require.Equal(t, http.StatusOK, res.Status())
			assert.Equal(t, "3", res.Header(middleware.HeaderRateLimitLimit))
			assert.Equal(t, strconv.Itoa(2-i), res.Header(middleware.HeaderRateLimitRemain))
		}
	})

	t.Run("request_over_limit_is_rejected", func(t *testing.T) {
		res := totalsFrom("198.51.100.7:40001")

		assert.Equal(t, http.StatusTooManyRequests, res.Status())
		testutil.AssertErrorResponse(t, res, dto.ErrCodeRateLimited)
		assert.Equal(t, "0", res.Header(middleware.HeaderRateLimitRemain))
	})

	t.Run("limit_covers_generation_too", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodPost, "/api/receipts/generate-pdf",
			testutil.Multipart{Fields: map[string]string{handler.FieldReceiptData: receiptPayload}})
		req.RemoteAddr = "198.51.100.7:40002"

		res := testutil.Serve(ts.Engine, req)
		assert.Equal(t, http.StatusTooManyRequests, res.Status())
	})

	t.Run("other_clients_are_unaffected", func(t *testing.T) {
		res := totalsFrom("203.0.113.9:40000")
		assert.Equal(t, http.StatusOK, res.Status())
	})

	t.Run("health_and_templates_are_never_limited", func(t *testing.T) {
		for _, path := range []string{"/api/health", "/api/templates", "/api/system/info"} {
			req := testutil.NewRequest(t, http.MethodGet, path, nil)
			req.RemoteAddr = "198.51.100.7:40003"

			res := testutil.Serve(ts.Engine, req)
			assert.Equal(t, http.StatusOK, res.Status(), path)
			assert.Empty(t, res.Header(middleware.HeaderRateLimitLimit), path)
		}
	})
}

// ============================================================================
// Resource Exhaustion Tests
// ============================================================================

func TestPenetration_ResourceExhaustion(t *testing.T) {
	ts := NewTestServer(t, ServerOptions{})

	t.Run("decompression_bomb_logo_is_dropped", func(t *testing.T) {
		res := testutil.Do(t, ts.Engine, testutil.Case{
			Method: http.MethodPost,
			Path:   "/api/invoices/generate-pdf",
			Body: testutil.Multipart{
				Fields: map[string]string{handler.FieldInvoiceData: invoicePayload},
				Files: []testutil.File{{
					Field:       handler.FieldLogo,
					Filename:    "bomb.png",
					ContentType: "image/png",
					Data:        pngHeaderOnly(100_000, 100_000),
				}},
			},
			ExpectedStatus: http.StatusOK,
		})

		testutil.AssertPDF(t, res)
		warnings := res.Recorder.Header().Values(middleware.HeaderAttachmentWarning)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "code="+document.AttachmentBadDimensions)
	})

	t.Run("too_many_items_rejected", func(t *testing.T) {
		items := make([]string, document.MaxItems+1)
		for i := range items {
			items[i] = `{"description":"x","quantity":1,"unit_price":1}`
		}
		payload := fmt.Sprintf(`{"invoice_number":"INV-1","client_name":"C","items":[%s]}`, strings.Join(items, ","))

		testutil.Do(t, ts.Engine, testutil.Case{
			Method:         http.MethodPost,
			Path:           "/api/invoices/generate-pdf",
			Body:           testutil.Multipart{Fields: map[string]string{handler.FieldInvoiceData: payload}},
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   dto.ErrCodeValidation,
		})
	})

	t.Run("recursive_json_depth_handled", func(t *testing.T) {
		depth := 1000
		nested := strings.Repeat(`{"a":`, depth) + `"x"` + strings.Repeat(`}`, depth)

		res := testutil.Do(t, ts.Engine, testutil.Case{
			Method: http.MethodPost,
			Path:   "/api/invoices/generate-pdf",
			Body:   testutil.Multipart{Fields: map[string]string{handler.FieldInvoiceData: nested}},
		})
		assert.Equal(t, http.StatusBadRequest, res.Status(), "Deep nested JSON should be handled safely")
	})

	t.Run("many_query_params_handled", func(t *testing.T) {
		params := make([]string, 1000)
		for i := range params {
			params[i] = fmt.Sprintf("param%d=value%d", i, i)
		}

		res := testutil.Serve(ts.Engine, testutil.NewRequest(t, http.MethodGet,
			"/api/templates?"+strings.Join(params, "&"), nil))
		assert.Equal(t, http.StatusOK, res.Status())
	})
}

// pngHeaderOnly returns a PNG that declares width x height but carries no pixels
func pngHeaderOnly(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 2 // truecolor
	writePNGChunk(&buf, "IHDR", ihdr)
	writePNGChunk(&buf, "IEND", nil)
	return buf.Bytes()
}

func writePNGChunk(buf *bytes.Buffer, kind string, data []byte) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	buf.Write(length[:])

	crc := crc32.NewIEEE()
	crc.Write([]byte(kind))
	crc.Write(data)
	buf.WriteString(kind)
	buf.Write(data)

	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	buf.Write(sum[:])
}
