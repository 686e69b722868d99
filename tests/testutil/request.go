package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// File is one file part of a multipart form
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Multipart is a form body: plain fields plus file parts
type Multipart struct {
	Fields map[string]string
	Files  []File
}

// Encode writes the form and returns the body with its Content-Type.
// Files keep their own Content-Type; CreateFormFile would force
// application/octet-stream.
func (m Multipart) Encode(t *testing.T) (io.Reader, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, value := range m.Fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for _, f := range m.Files {
		part, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename)},
			"Content-Type":        {f.ContentType},
		})
		require.NoError(t, err)
		_, err = part.Write(f.Data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

// NewRequest builds a request for body:
//
//	nil        no body
//	string     raw JSON
//	Multipart  multipart/form-data
//	other      marshaled to JSON
func NewRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	if path == "" {
		path = "/"
	}

	var (
		reader      io.Reader
		contentType = "application/json"
	)
	switch b := body.(type) {
	case nil:
		return httptest.NewRequest(method, path, nil)
	case string:
		reader = strings.NewReader(b)
	case Multipart:
		reader, contentType = b.Encode(t)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err, "marshal request body")
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", contentType)
	return req
}

// Case is one request against an engine with its expectations.
// ExpectedCode is the code of an error envelope.
type Case struct {
	Name           string
	Method         string
	Path           string
	Body           any
	Headers        map[string]string
	ExpectedStatus int
	ExpectedCode   string
	Validate       func(t *testing.T, res *Result)
}

// RunCases runs each case as a subtest
func RunCases(t *testing.T, h http.Handler, cases []Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			Do(t, h, c)
		})
	}
}

// Do sends c to h, checks its expectations and returns the response.
// Method defaults to GET.
func Do(t *testing.T, h http.Handler, c Case) *Result {
	t.Helper()

	method := c.Method
	if method == "" {
		method = http.MethodGet
	}
	req := NewRequest(t, method, c.Path, c.Body)
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
	res := Serve(h, req)

	if c.ExpectedStatus != 0 {
		assert.Equal(t, c.ExpectedStatus, res.Status(), "body: %s", res.Body())
	}
	if c.ExpectedCode != "" {
		AssertErrorResponse(t, res, c.ExpectedCode)
	}
	if c.Validate != nil {
		c.Validate(t, res)
	}
	return res
}
