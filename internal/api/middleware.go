package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthMiddleware проверяет статический токен администратора.
// Токен принимается в заголовке Authorization ("Bearer <token>") или X-Api-Token.
func AuthMiddleware(apiToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiToken == "" {
				http.Error(w, "Unauthorized: API token is not configured", http.StatusUnauthorized)
				return
			}
			token := r.Header.Get("X-Api-Token")
			if token == "" {
				token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(apiToken)) != 1 {
				http.Error(w, "Unauthorized: Invalid API token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
