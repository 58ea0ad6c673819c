package server

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS allows browsers on the given origins to call the API with
// credentials. Without origins cross-origin requests get no CORS headers.
func CORS(origins []string) func(http.Handler) http.Handler {
	var allowed []string
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   allowed,
		AllowCredentials: true,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	})
	return c.Handler
}
