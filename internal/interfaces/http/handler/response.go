package handler

import "github.com/invoicegen/backend/internal/interfaces/http/dto"

// The types below only describe response bodies in the OpenAPI annotations.
// Handlers write dto.Response.

// APIResponse is the success envelope with a typed data field
// @Description Success envelope; data holds the endpoint payload
type APIResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    T         `json:"data"`
	Meta    *dto.Meta `json:"meta,omitempty"`
}

// ErrorResponse is the envelope of every JSON error, including failed
// PDF generations
// @Description Error envelope; details lists invalid fields for ERR_VALIDATION
type ErrorResponse struct {
	Success bool          `json:"success" example:"false"`
	Error   ErrorEnvelope `json:"error"`
}

// ErrorEnvelope mirrors dto.ErrorInfo with example values
type ErrorEnvelope struct {
	Code      string                 `json:"code" example:"ERR_VALIDATION"`
	Message   string                 `json:"message" example:"Request validation failed"`
	RequestID string                 `json:"request_id,omitempty" example:"5f2b8c1e-8a43-4a4e-9d1c-2f7a0e6b9c11"`
	Details   []dto.ValidationDetail `json:"details,omitempty"`
}
