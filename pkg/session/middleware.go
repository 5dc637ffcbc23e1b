package session

import (
	"net/http"

	"github.com/dmitrymomot/taskflow/pkg/httpx"
)

// Middleware rejects requests without a valid session and injects the
// authenticated user id into the request context.
func Middleware(sessions *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := sessions.UserID(r)
			if err != nil {
				httpx.Error(w, http.StatusUnauthorized, "Unauthorized.")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
