package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/angelmondragon/mia-backend/pkg/pagination"
	"github.com/google/uuid"
)

func fieldError(field, format string, args ...any) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, format, args...).WithDetails(map[string]any{"field": field})
}

// ParseQueryInt reads an optional integer query parameter bounded to [lo, hi].
func ParseQueryInt(r *http.Request, key string, fallback, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fieldError(key, "%s must be numeric", key)
	}
	if value < lo || value > hi {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "%s out of range", key).
			WithDetails(map[string]any{"field": key, "min": lo, "max": hi})
	}
	return value, nil
}

// ParseLimit reads ?limit= with the shared pagination bounds.
func ParseLimit(r *http.Request) (int, error) {
	return ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
}

// ParseUUID validates a path, query or body value as a UUID.
func ParseUUID(raw, field string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, fieldError(field, "%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field).
			WithDetails(map[string]any{"field": field})
	}
	return id, nil
}

func QueryUUID(r *http.Request, key string) (uuid.UUID, error) {
	return ParseUUID(r.URL.Query().Get(key), key)
}

// RequiredQueryString sanitizes a query parameter and rejects it when
// nothing printable is left.
func RequiredQueryString(r *http.Request, key string, maxRunes int) (string, error) {
	value := SanitizeString(r.URL.Query().Get(key), maxRunes)
	if value == "" {
		return "", fieldError(key, "%s is required", key)
	}
	return value, nil
}
