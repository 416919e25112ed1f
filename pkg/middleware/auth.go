package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/httpapi"
	"github.com/evaldesk/evaldesk/pkg/types"
)

const (
	userIDHeader   = "X-Auth-User-Id"
	userRoleHeader = "X-Auth-User-Role"
)

// ProvideUser trusts the identity headers set by the fronting identity
// provider and places the resolved user in the context. Requests without a
// valid identity are rejected; this service never authenticates on its own.
func ProvideUser() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := r.Header.Get(userIDHeader)
			rawRole := r.Header.Get(userRoleHeader)
			if rawID == "" || rawRole == "" {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing identity headers", nil)
				return
			}
			userID, err := uuid.Parse(rawID)
			if err != nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "malformed user id", nil)
				return
			}
			role, err := types.ParseRole(rawRole)
			if err != nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "unknown role", nil)
				return
			}
			ctx := composables.WithUser(r.Context(), types.User{ID: userID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
