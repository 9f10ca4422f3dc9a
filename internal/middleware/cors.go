package middleware

import (
	"net/http"

	"dacsan-be/internal/session"

	"github.com/rs/cors"
)

// CORS allows the storefront origins to call the API with credentials.
func CORS(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID", "X-Device-ID"},
		ExposedHeaders:   []string{session.TokenHeader, "X-Request-ID"},
		AllowCredentials: true,
	})
	return c.Handler
}
