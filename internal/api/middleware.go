/**
 * @description
 * This file provides the authentication middleware for internal
 * service-to-service endpoints. Callers must present the shared key in the
 * X-Internal-API-Key header; the key is required at boot so there is no
 * unauthenticated fallback.
 */

package api

import (
	"log"
	"net/http"
)

// InternalAuthMiddleware returns middleware that validates the internal API
// key header on every request it wraps.
func InternalAuthMiddleware(requiredKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			providedKey := r.Header.Get("X-Internal-API-Key")
			if requiredKey == "" || providedKey != requiredKey {
				log.Printf("level=warn component=api msg=\"rejected internal request with invalid api key\" path=%s", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "invalid internal API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
