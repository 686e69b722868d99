// Package shared holds the error type used across domain packages.
package shared

import "fmt"

// Domain error codes
const (
	CodeInvalidState   = "INVALID_STATE"
	CodeInvalidMargins = "INVALID_MARGINS"
)

// DomainError is a broken domain rule. Two DomainErrors match under
// errors.Is when their codes are equal.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any *DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Errorf creates a DomainError with a formatted message
func Errorf(code, format string, args ...any) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is checks
var (
	ErrInvalidState   = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInvalidMargins = NewDomainError(CodeInvalidMargins, "Invalid page margins")
)
