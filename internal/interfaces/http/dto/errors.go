package dto

import "net/http"

// API error codes sent in ErrorInfo.Code
const (
	ErrCodeInternal         = "ERR_INTERNAL"
	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeNotFound         = "ERR_NOT_FOUND"
	ErrCodeMethodNotAllowed = "ERR_METHOD_NOT_ALLOWED"
	ErrCodeInvalidState     = "ERR_INVALID_STATE"
	ErrCodeBadRequest       = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput     = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON      = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge  = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited      = "ERR_RATE_LIMITED"

	// Rendering failures are never the client's fault; both answer 500.
	ErrCodeRenderFailed  = "ERR_RENDER_FAILED"
	ErrCodeRenderTimeout = "ERR_RENDER_TIMEOUT"
)

var statusByCode = map[string]int{
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeMethodNotAllowed: http.StatusMethodNotAllowed,
	ErrCodeInvalidState:     http.StatusUnprocessableEntity,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:      http.StatusTooManyRequests,
	ErrCodeRenderFailed:     http.StatusInternalServerError,
	ErrCodeRenderTimeout:    http.StatusInternalServerError,
}

// GetHTTPStatus returns the status answered with code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// innerCodes translates codes raised below the HTTP layer: shared.DomainError,
// document.ValidationError and printing.RenderError.
var innerCodes = map[string]string{
	"NOT_FOUND":         ErrCodeNotFound,
	"INVALID_INPUT":     ErrCodeInvalidInput,
	"INVALID_MARGINS":   ErrCodeInvalidInput,
	"INVALID_STATE":     ErrCodeInvalidState,
	"VALIDATION_ERROR":  ErrCodeValidation,
	"NO_VALID_ITEMS":    ErrCodeValidation,
	"REQUEST_TOO_LARGE": ErrCodeRequestTooLarge,

	"RENDER_TIMEOUT":     ErrCodeRenderTimeout,
	"RENDER_FAILED":      ErrCodeRenderFailed,
	"INVALID_HTML":       ErrCodeRenderFailed,
	"INVALID_REQUEST":    ErrCodeRenderFailed,
	"BINARY_NOT_FOUND":   ErrCodeRenderFailed,
	"INVALID_PAPER_SIZE": ErrCodeRenderFailed,
}

// NormalizeErrorCode maps an inner code to its API code. API codes and
// unknown codes are returned unchanged.
func NormalizeErrorCode(code string) string {
	if api, ok := innerCodes[code]; ok {
		return api
	}
	return code
}
