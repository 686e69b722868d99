package document

import (
	"fmt"
	"strings"
)

// Field error codes
const (
	CodeRequired     = "REQUIRED"
	CodeInvalid      = "INVALID_FORMAT"
	CodeOutOfRange   = "OUT_OF_RANGE"
	CodeTooLong      = "TOO_LONG"
	CodeNoValidItems = "NO_VALID_ITEMS"
)

// FieldError describes one invalid field of a record
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError is returned when a record cannot be rendered as submitted.
// It carries every failing field, not just the first.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError creates a ValidationError with a single field error
func NewValidationError(field, code, message string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, code, message)
	return e
}

// Add appends a field error
func (e *ValidationError) Add(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

// Merge appends all field errors of other
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	e.Fields = append(e.Fields, other.Fields...)
}

// HasErrors reports whether any field error was recorded
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// HasField reports whether field has a recorded error
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// OrNil returns e as an error, or nil when nothing was recorded
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AttachmentKind names the slot an uploaded image fills
type AttachmentKind string

const (
	AttachmentLogo      AttachmentKind = "logo"
	AttachmentSignature AttachmentKind = "signature"
)

// String returns the string representation of AttachmentKind
func (a AttachmentKind) String() string {
	return string(a)
}

// Attachment error codes
const (
	AttachmentTooLarge          = "ATTACHMENT_TOO_LARGE"
	AttachmentNotImage          = "ATTACHMENT_NOT_IMAGE"
	AttachmentUnsupportedFormat = "ATTACHMENT_UNSUPPORTED_FORMAT"
	AttachmentBadDimensions     = "ATTACHMENT_BAD_DIMENSIONS"
	AttachmentUnreadable        = "ATTACHMENT_UNREADABLE"
)

// AttachmentError reports an attachment that was dropped from the document.
// It never aborts generation.
type AttachmentError struct {
	Attachment AttachmentKind
	Code       string
	Message    string
	Cause      error
}

// NewAttachmentError creates a new AttachmentError
func NewAttachmentError(kind AttachmentKind, code, message string, cause error) *AttachmentError {
	return &AttachmentError{Attachment: kind, Code: code, Message: message, Cause: cause}
}

// Error implements the error interface
func (e *AttachmentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Attachment, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Attachment, e.Message)
}

// Unwrap returns the underlying cause
func (e *AttachmentError) Unwrap() error {
	return e.Cause
}
