// Package api implements the Jera REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/starford/jera/internal/models"
)

type userKey struct{}

// CurrentUser returns the user identity resolved for the request, or the
// empty UserID when the request is anonymous.
func CurrentUser(r *http.Request) models.UserID {
	u, _ := r.Context().Value(userKey{}).(models.UserID)
	return u
}

// AuthMiddleware resolves the current user into the request context.
//
// With enabled false (disabled mode) every request runs as localUser,
// suitable for a single-user local deployment. With enabled true, a
// "Authorization: Bearer <token>" header is looked up in tokens; an
// unknown or missing token leaves the request anonymous rather than
// failing outright, because non-archived goals are readable without an
// identity. Operations that need a user reject downstream.
func AuthMiddleware(enabled bool, tokens map[string]models.UserID, localUser models.UserID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := localUser
			if enabled {
				user = ""
				auth := r.Header.Get("Authorization")
				if strings.HasPrefix(auth, "Bearer ") {
					user = tokens[strings.TrimPrefix(auth, "Bearer ")]
				}
			}
			ctx := context.WithValue(r.Context(), userKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
