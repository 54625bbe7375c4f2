package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// Local dev server and the chat front end's preview deployments.
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"https://*.vercel.app",
}

// CORS lets the browser chat client call the API with its shared key.
// Blank entries in origins are ignored.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed = append(allowed, origin)
		}
	}
	if len(allowed) == 0 {
		allowed = defaultCORSOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", authorizationHeader, apiKeyHeader, requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, "Retry-After"},
		MaxAge:         300,
	}).Handler
}
