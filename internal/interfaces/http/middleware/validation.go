package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/invoicegen/backend/internal/domain/document"
	"github.com/invoicegen/backend/internal/domain/shared/valueobject"
	"github.com/invoicegen/backend/internal/interfaces/http/dto"
)

var setupValidatorOnce sync.Once

// SetupValidator configures gin's validator once per process: errors name
// fields by their JSON key and the "currency" tag accepts ISO-style codes
// in any case.
func SetupValidator() {
	setupValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			_, err := valueobject.ParseCurrency(fl.Field().String())
			return err == nil
		})
	})
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		name, _, _ = strings.Cut(fld.Tag.Get("form"), ",")
	}
	return name
}

// ValidationDetails lists the field errors carried by err, which may be a
// binding error or a *document.ValidationError. Other errors yield nil.
func ValidationDetails(err error) []dto.ValidationDetail {
	var bindErrs validator.ValidationErrors
	if errors.As(err, &bindErrs) {
		details := make([]dto.ValidationDetail, len(bindErrs))
		for i, e := range bindErrs {
			details[i] = dto.ValidationDetail{Field: fieldPath(e), Message: messageFor(e), Code: e.Tag()}
		}
		return details
	}

	var recordErr *document.ValidationError
	if errors.As(err, &recordErr) {
		details := make([]dto.ValidationDetail, len(recordErr.Fields))
		for i, f := range recordErr.Fields {
			details[i] = dto.ValidationDetail{Field: f.Field, Message: f.Message, Code: f.Code}
		}
		return details
	}
	return nil
}

// HandleValidationError answers 400 with the field errors of err
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed", GetRequestID(c), ValidationDetails(err)))
}

// fieldPath strips the root struct, e.g. "items[1].description"
func fieldPath(e validator.FieldError) string {
	if _, path, ok := strings.Cut(e.Namespace(), "."); ok {
		return path
	}
	return e.Field()
}

var tagMessages = map[string]func(validator.FieldError) string{
	"required": func(validator.FieldError) string { return "This field is required" },
	"email":    func(validator.FieldError) string { return "Invalid email format" },
	"currency": func(validator.FieldError) string { return "Must be a 3-letter currency code" },
	"oneof":    func(e validator.FieldError) string { return "Must be one of: " + e.Param() },
	"gte":      func(e validator.FieldError) string { return "Must be greater than or equal to " + e.Param() },
	"lte":      func(e validator.FieldError) string { return "Must be less than or equal to " + e.Param() },
	"len":      func(e validator.FieldError) string { return "Must be exactly " + e.Param() + " characters" },
	"min":      func(e validator.FieldError) string { return "Must be at least " + e.Param() + unitOf(e) },
	"max":      func(e validator.FieldError) string { return "Must be at most " + e.Param() + unitOf(e) },
}

func messageFor(e validator.FieldError) string {
	if msg, ok := tagMessages[e.Tag()]; ok {
		return msg(e)
	}
	return "Invalid value"
}

// unitOf names what min and max count for the field's type
func unitOf(e validator.FieldError) string {
	switch e.Kind() {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " entries"
	default:
		return ""
	}
}
