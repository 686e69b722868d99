package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/invoicegen/backend/internal/domain/document"
	"github.com/invoicegen/backend/internal/domain/shared"
	"github.com/invoicegen/backend/internal/infrastructure/printing"
	"github.com/invoicegen/backend/internal/interfaces/http/dto"
	"github.com/invoicegen/backend/internal/interfaces/http/middleware"
)

// MsgGenerationFailed is the only message clients see for render failures
const MsgGenerationFailed = "failed to generate document"

const msgUnexpected = "An unexpected error occurred"

// BaseHandler writes the JSON envelopes shared by every handler
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader(middleware.HeaderRequestID)
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessList writes data with its length in meta.total
func (h *BaseHandler) SuccessList(c *gin.Context, data any, total int) {
	c.JSON(http.StatusOK, dto.NewListResponse(data, total))
}

func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	h.Error(c, http.StatusBadRequest, code, message)
}

// ValidationError writes a 400 listing every invalid field
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed", getRequestID(c), details))
}

// HandleError answers err:
//
//	*document.ValidationError, validator.ValidationErrors  400 with details
//	*http.MaxBytesError                                    413
//	*printing.RenderError                                  500, generic message
//	*shared.DomainError                                    by code
//
// Anything else is a 500. The cause of a 500 is attached to the gin
// context for the access log and never sent to the client.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var (
		recordErr *document.ValidationError
		bindErr   validator.ValidationErrors
		renderErr *printing.RenderError
		domainErr *shared.DomainError
	)
	switch {
	case err == nil:
	case errors.As(err, &recordErr), errors.As(err, &bindErr):
		h.ValidationError(c, middleware.ValidationDetails(err))
	case middleware.IsBodyTooLarge(err):
		middleware.AbortTooLarge(c)
	case errors.As(err, &renderErr):
		_ = c.Error(err)
		h.Error(c, http.StatusInternalServerError, renderCode(renderErr), MsgGenerationFailed)
	case errors.As(err, &domainErr):
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
	default:
		_ = c.Error(err)
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, msgUnexpected)
	}
}

// renderCode keeps the timeout distinction and folds every other
// render failure into ErrCodeRenderFailed
func renderCode(err *printing.RenderError) string {
	if code := dto.NormalizeErrorCode(err.Code); code == dto.ErrCodeRenderTimeout {
		return code
	}
	return dto.ErrCodeRenderFailed
}
