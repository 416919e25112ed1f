package shared

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/evaldesk/evaldesk/pkg/serrors"
)

// ParseUUID extracts and parses a UUID path variable.
func ParseUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return uuid.Nil, serrors.NewFieldRequiredError(name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, serrors.NewError("INVALID_ID", "malformed identifier", name)
	}
	return id, nil
}
