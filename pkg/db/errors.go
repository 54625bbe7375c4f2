package db

import (
	"strings"

	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
)

// IsUniqueViolation reports whether err is a unique constraint violation from
// Postgres or sqlite. A non-empty constraintName narrows the match to that
// constraint.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	dump := pkgerrors.Dump(err)
	if dump.UniqueViolation {
		return constraintName == "" || dump.DBConstraint == constraintName ||
			strings.Contains(dump.TopMessage, constraintName)
	}

	// Driver errors flattened to text by a wrapper still carry the message.
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
