package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/angelmondragon/mia-backend/api/responses"
	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/angelmondragon/mia-backend/pkg/logger"
)

const (
	apiKeyHeader        = "x-api-key"
	authorizationHeader = "Authorization"
)

// APIKey requires the shared key in the x-api-key header. An empty key
// disables the check, which only local environments should rely on.
func APIKey(sharedKey string, logg *logger.Logger) func(http.Handler) http.Handler {
	sharedKey = strings.TrimSpace(sharedKey)
	return func(next http.Handler) http.Handler {
		if sharedKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := strings.TrimSpace(r.Header.Get(apiKeyHeader))
			if !secretsMatch(provided, sharedKey) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid_api_key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CronAuth requires "Authorization: Bearer <secret>". Unlike APIKey an empty
// secret rejects every call so the tracking endpoint is never left open.
func CronAuth(secret string, logg *logger.Logger) func(http.Handler) http.Handler {
	secret = strings.TrimSpace(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get(authorizationHeader))
			if secret == "" || !secretsMatch(token, secret) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized (cron)"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(raw[7:])
}

func secretsMatch(provided, expected string) bool {
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}
