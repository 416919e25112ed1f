package serrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BaseError is a coded error safe to surface through the API layer.
type BaseError struct {
	Code    string
	Message string
	Field   string
}

func NewError(code, message, field string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Field:   field,
	}
}

func (e *BaseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BaseError) Is(target error) bool {
	var other *BaseError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

func NewFieldRequiredError(field string) *BaseError {
	return NewError("FIELD_REQUIRED", fmt.Sprintf("%s is required", field), field)
}

// ValidationErrors maps field names to coded errors produced before any
// mutation is attempted.
type ValidationErrors map[string]*BaseError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, err := range v {
		parts = append(parts, field+": "+err.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ProcessValidatorErrors converts go-playground validator errors into
// ValidationErrors. Non-validator errors produce a single GENERIC entry.
func ProcessValidatorErrors(err error) ValidationErrors {
	out := ValidationErrors{}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out["_"] = NewError("VALIDATION_FAILED", err.Error(), "")
		return out
	}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = NewFieldRequiredError(fe.Field())
		default:
			out[fe.Field()] = NewError(
				"FIELD_INVALID",
				fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag()),
				fe.Field(),
			)
		}
	}
	return out
}
