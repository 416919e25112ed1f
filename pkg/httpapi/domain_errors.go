package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/evaldesk/evaldesk/pkg/serrors"
)

// WriteDomainError translates domain and validation failures into the shared
// JSON error envelope. Unknown errors surface as a 500 without leaking
// internals.
func WriteDomainError(w http.ResponseWriter, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		_ = WriteValidationErrors(w, serrors.ProcessValidatorErrors(err))
		return
	}

	var vErrs serrors.ValidationErrors
	if errors.As(err, &vErrs) {
		_ = WriteValidationErrors(w, vErrs)
		return
	}

	var base *serrors.BaseError
	if errors.As(err, &base) {
		meta := map[string]string(nil)
		if base.Field != "" {
			meta = map[string]string{"field": base.Field}
		}
		_ = WriteError(w, statusForCode(base.Code), base.Code, base.Message, meta)
		return
	}

	_ = WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}

func statusForCode(code string) int {
	switch code {
	case "FORBIDDEN", "NOT_OWNER":
		return http.StatusForbidden
	case "FIELD_REQUIRED", "FIELD_INVALID", "INVALID_ID", "INVALID_DECISION":
		return http.StatusBadRequest
	}
	if strings.HasSuffix(code, "_NOT_FOUND") {
		return http.StatusNotFound
	}
	// Domain rule violations: the request was well-formed but the entity's
	// current state refuses it.
	return http.StatusConflict
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	_ = WriteError(w, http.StatusBadRequest, "BAD_REQUEST", message, nil)
}
