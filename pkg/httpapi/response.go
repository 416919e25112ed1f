package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/evaldesk/evaldesk/pkg/serrors"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// WriteValidationErrors renders pre-mutation validation failures as a 422
// with one meta entry per failed field.
func WriteValidationErrors(w http.ResponseWriter, errs serrors.ValidationErrors) error {
	meta := make(map[string]string, len(errs))
	for field, err := range errs {
		meta[field] = err.Message
	}
	return WriteJSON(w, http.StatusUnprocessableEntity, &ErrorEnvelope{
		Code:    "VALIDATION_FAILED",
		Message: "request validation failed",
		Meta:    meta,
	})
}
