package testutil

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envelope is the JSON shape shared by every API response
type envelope struct {
	Success *bool `json:"success"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

// JSONResponseAs decodes the response body into T
func JSONResponseAs[T any](t *testing.T, res *Result) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(res.Body(), &v), "response is not JSON: %s", res.Body())
	return v
}

// JSONResponse decodes the response body as a JSON object
func JSONResponse(t *testing.T, res *Result) map[string]any {
	t.Helper()
	return JSONResponseAs[map[string]any](t, res)
}

// AssertSuccessResponse checks for {"success": true} without an error
func AssertSuccessResponse(t *testing.T, res *Result) {
	t.Helper()

	env := JSONResponseAs[envelope](t, res)
	require.NotNil(t, env.Success, "envelope has no success field")
	assert.True(t, *env.Success)
	assert.Nil(t, env.Error)
}

// AssertErrorResponse checks for {"success": false} carrying code
func AssertErrorResponse(t *testing.T, res *Result, code string) {
	t.Helper()

	env := JSONResponseAs[envelope](t, res)
	require.NotNil(t, env.Success, "envelope has no success field")
	assert.False(t, *env.Success)
	require.NotNil(t, env.Error, "envelope has no error object")
	assert.Equal(t, code, env.Error.Code)
}

// AssertPDF checks for a PDF download
func AssertPDF(t *testing.T, res *Result) {
	t.Helper()

	assert.Equal(t, "application/pdf", res.Header("Content-Type"))
	assert.True(t, bytes.HasPrefix(res.Body(), []byte("%PDF-")), "body is not a PDF")
}
