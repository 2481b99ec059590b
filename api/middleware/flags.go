// ABOUTME: Feature flag middleware exposes the flag manager to handlers and services
// ABOUTME: Every request context carries the manager so flag checks see live values

package middleware

import (
	"net/http"

	"bookshelf-api/pkg/featureflags"
)

// FeatureFlagMiddleware stores manager in each request context
func FeatureFlagMiddleware(manager featureflags.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager != nil {
				r = r.WithContext(featureflags.WithManager(r.Context(), manager))
			}
			next.ServeHTTP(w, r)
		})
	}
}
